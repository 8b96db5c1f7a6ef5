package selector

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const sampleDoc = `<html><body>
<h1>Catalog</h1>
<ul>
<li class="item"><a href="/item/1">one</a></li>
<li class="item"><a href="/item/2">two</a></li>
<li class="item"><a href="/item/2">two again</a></li>
<li class="other"><a href="/about">about</a></li>
</ul>
</body></html>`

func parseDoc(t *testing.T) *html.Node {
	t.Helper()
	n, err := html.Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	return n
}

func TestCSSMatchAll(t *testing.T) {
	n := parseDoc(t)
	nodes, err := Match(CSS("li.item"), n)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)

	nodes, err = Match(CSS("li.missing"), n)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestXPathMatchAll(t *testing.T) {
	n := parseDoc(t)
	nodes, err := Match(XPath("//li"), n)
	require.NoError(t, err)
	assert.Len(t, nodes, 4)
}

func TestSimilarLinkDedupes(t *testing.T) {
	n := parseDoc(t)
	nodes, err := Match(SimilarLink(`/item/\d+`), n)
	require.NoError(t, err)
	// /item/2 appears twice but matches once
	assert.Len(t, nodes, 2)
}

func TestMatchOne(t *testing.T) {
	n := parseDoc(t)

	node, err := MatchOne(CSS("h1"), n)
	require.NoError(t, err)
	assert.NotNil(t, node)

	_, err = MatchOne(CSS("li.item"), n)
	var ambiguous *AmbiguousMatchError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, 3, ambiguous.Count)

	_, err = MatchOne(CSS("table"), n)
	var noMatch *NoMatchError
	require.True(t, errors.As(err, &noMatch))
	assert.Equal(t, "table", noMatch.Selector)
}

func TestExpectations(t *testing.T) {
	n := parseDoc(t)
	s := CSS("li.item")

	_, err := Match(s, n, Num(3))
	assert.NoError(t, err)

	_, err = Match(s, n, Num(2))
	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, 3, selErr.Got)

	_, err = Match(s, n, Min(4))
	assert.Error(t, err)

	_, err = Match(s, n, Min(2))
	assert.NoError(t, err)

	_, err = Match(s, n, Max(2))
	assert.Error(t, err)

	_, err = Match(s, n, Max(3))
	assert.NoError(t, err)

	// expectations combine per call
	_, err = Match(s, n, Min(1), Max(5))
	assert.NoError(t, err)
}
