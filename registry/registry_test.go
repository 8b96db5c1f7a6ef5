package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenzapen/trowel/page"
)

type probe struct{}

func (probe) Process(ctx *page.Context) (page.Outcome, error) {
	return page.Outcome{}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	Register("test.probe", func() *page.Unit {
		return page.New(probe{}, page.WithSource("https://example.com"))
	})

	u, err := Lookup("test.probe")
	require.NoError(t, err)
	assert.Equal(t, "registry.probe", u.Name())
	assert.Contains(t, Names(), "test.probe")

	_, err = Lookup("test.nope")
	assert.Error(t, err)
}

func TestDuplicateRegisterPanics(t *testing.T) {
	Register("test.dup", func() *page.Unit { return page.New(probe{}) })
	assert.Panics(t, func() {
		Register("test.dup", func() *page.Unit { return page.New(probe{}) })
	})
}
