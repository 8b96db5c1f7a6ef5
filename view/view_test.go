package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenzapen/trowel/selector"
)

func TestHTMLView(t *testing.T) {
	v, err := ParseHTML([]byte(`<html><body><h1> Title </h1><p>a</p><p>b</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, KindHTML, v.Kind())

	text, err := v.Text(selector.CSS("h1"))
	require.NoError(t, err)
	assert.Equal(t, "Title", text)

	nodes, err := v.Select(selector.CSS("p"))
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	_, err = v.SelectOne(selector.CSS("p"))
	assert.Error(t, err)

	assert.NotNil(t, v.Document())
}

func TestJSONViewLookup(t *testing.T) {
	v, err := ParseJSON([]byte(`{"data":{"items":[{"name":"a"},{"name":"b"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, KindJSON, v.Kind())

	val, err := v.Lookup("data.items.1.name")
	require.NoError(t, err)
	assert.Equal(t, "b", val)

	root, err := v.Lookup("")
	require.NoError(t, err)
	assert.NotNil(t, root)

	_, err = v.Lookup("data.missing")
	assert.Error(t, err)

	_, err = v.Lookup("data.items.9")
	assert.Error(t, err)

	_, err = v.Lookup("data.items.0.name.deeper")
	assert.Error(t, err)
}

func TestCSVView(t *testing.T) {
	v, err := ParseCSV([]byte("id,name\n1,A\n2,B\n3\n"))
	require.NoError(t, err)
	assert.Equal(t, KindCSV, v.Kind())
	assert.Equal(t, []string{"id", "name"}, v.Header())

	rows := v.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, map[string]string{"id": "1", "name": "A"}, rows[0])
	// short row omits missing columns
	assert.Equal(t, map[string]string{"id": "3"}, rows[2])
}

func TestBuildDispatch(t *testing.T) {
	v, err := Build(KindJSON, []byte(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, KindJSON, v.Kind())

	_, err = Build(Kind(99), nil)
	assert.Error(t, err)
}
