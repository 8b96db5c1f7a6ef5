package sqlitestorage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
)

func TestSinkRequiresPath(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestSinkBatchesAndFlushesOnFinalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	s, err := New(WithPath(path), WithTable("books"), WithBatchCount(2))
	require.NoError(t, err)

	require.NoError(t, s.Emit(page.Record{"title": "A", "price": "10.00"}))
	require.NoError(t, s.Emit(page.Record{"title": "B", "price": "12.50"}))
	require.NoError(t, s.Emit(page.Record{"title": "C", "extra": "dropped"}))
	require.NoError(t, s.Finalize(storage.Summary{Emitted: 3}))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "books"`).Scan(&count))
	assert.Equal(t, 3, count)

	var price string
	require.NoError(t, db.QueryRow(`SELECT "price" FROM "books" WHERE "title" = 'B'`).Scan(&price))
	assert.Equal(t, "12.50", price)

	// the column set is fixed by the first record
	var extra string
	err = db.QueryRow(`SELECT "extra" FROM "books"`).Scan(&extra)
	assert.Error(t, err)
}

func TestColumnValueEncodesNonStrings(t *testing.T) {
	assert.Equal(t, "", columnValue(nil))
	assert.Equal(t, "plain", columnValue("plain"))
	assert.Equal(t, "42", columnValue(42))
	assert.Equal(t, `["a","b"]`, columnValue([]string{"a", "b"}))
}
