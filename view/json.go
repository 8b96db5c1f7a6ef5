package view

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSON is the parsed view over a decoded JSON document.
type JSON struct {
	value any
}

func ParseJSON(body []byte) (*JSON, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, err
	}
	return &JSON{value: value}, nil
}

func (v *JSON) Kind() Kind {
	return KindJSON
}

// Value returns the decoded document.
func (v *JSON) Value() any {
	return v.value
}

// Lookup walks a dotted path ("data.items.0.name") through objects and
// arrays. A missing segment is an error, never a silent nil.
func (v *JSON) Lookup(path string) (any, error) {
	cur := v.value
	if path == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			val, ok := c[seg]
			if !ok {
				return nil, fmt.Errorf("json path %q: missing key %q", path, seg)
			}
			cur = val
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, fmt.Errorf("json path %q: bad index %q", path, seg)
			}
			cur = c[i]
		default:
			return nil, fmt.Errorf("json path %q: cannot descend into %T at %q", path, cur, seg)
		}
	}
	return cur, nil
}
