package mergesink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
)

type captureSink struct {
	records   []page.Record
	finalized bool
}

func (s *captureSink) Emit(rec page.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) Finalize(sum storage.Summary) error {
	s.finalized = true
	return nil
}

func TestPatchMergedOnJoinKey(t *testing.T) {
	next := &captureSink{}
	s := New(next, "id", nil)

	require.NoError(t, s.Emit(page.Record{"id": 1, "name": "A"}))
	require.NoError(t, s.Emit(page.Record{"id": 2, "name": "B"}))
	require.NoError(t, s.EmitPatch(page.Record{"id": 2, "rating": 5}))
	require.NoError(t, s.Finalize(storage.Summary{}))

	require.True(t, next.finalized)
	assert.Equal(t, []page.Record{
		{"id": 1, "name": "A"},
		{"id": 2, "name": "B", "rating": 5},
	}, next.records)
}

func TestPatchFieldsWin(t *testing.T) {
	next := &captureSink{}
	s := New(next, "id", nil)

	require.NoError(t, s.Emit(page.Record{"id": 1, "name": "stale"}))
	require.NoError(t, s.EmitPatch(page.Record{"id": 1, "name": "fresh"}))
	require.NoError(t, s.Finalize(storage.Summary{}))

	require.Len(t, next.records, 1)
	assert.Equal(t, "fresh", next.records[0]["name"])
}

func TestUnkeyedRecordsPassThrough(t *testing.T) {
	next := &captureSink{}
	s := New(next, "id", nil)

	require.NoError(t, s.Emit(page.Record{"id": 1, "name": "A"}))
	require.NoError(t, s.Emit(page.Record{"note": "no id here"}))
	require.NoError(t, s.Finalize(storage.Summary{}))

	require.Len(t, next.records, 2)
	// keyed records come first, unkeyed after
	assert.Equal(t, "A", next.records[0]["name"])
	assert.Equal(t, "no id here", next.records[1]["note"])
}

func TestUnmatchedPatchIsDropped(t *testing.T) {
	next := &captureSink{}
	s := New(next, "id", nil)

	require.NoError(t, s.Emit(page.Record{"id": 1, "name": "A"}))
	require.NoError(t, s.EmitPatch(page.Record{"id": 99, "rating": 1}))
	require.NoError(t, s.EmitPatch(page.Record{"rating": 2}))
	require.NoError(t, s.Finalize(storage.Summary{}))

	require.Len(t, next.records, 1)
	assert.Equal(t, page.Record{"id": 1, "name": "A"}, next.records[0])
}

func TestDuplicateKeyMergesInPlace(t *testing.T) {
	next := &captureSink{}
	s := New(next, "id", nil)

	require.NoError(t, s.Emit(page.Record{"id": 1, "name": "A"}))
	require.NoError(t, s.Emit(page.Record{"id": 2, "name": "B"}))
	require.NoError(t, s.Emit(page.Record{"id": 1, "extra": "X"}))
	require.NoError(t, s.Finalize(storage.Summary{}))

	require.Len(t, next.records, 2)
	assert.Equal(t, page.Record{"id": 1, "name": "A", "extra": "X"}, next.records[0])
	assert.Equal(t, page.Record{"id": 2, "name": "B"}, next.records[1])
}
