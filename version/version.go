// Package version carries build metadata injected via -ldflags.
package version

import (
	"fmt"
	"io"
	"os"
)

var (
	Version   = "dev"
	GitHash   = "unknown"
	GitBranch = "unknown"
	BuildTS   = "unknown"
)

// String is the short form used in logs and the user agent.
func String() string {
	h := GitHash
	if len(h) > 7 {
		h = h[:7]
	}
	return fmt.Sprintf("%s-%s", Version, h)
}

// Printer writes the full build report to stdout.
func Printer() {
	Fprint(os.Stdout)
}

func Fprint(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", String())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Hash:         ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
}
