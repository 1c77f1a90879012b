package pebble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/prizepool/pkg/db"
)

func TestBatch(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store db.KVStore)
	}{
		{
			name: "basic_batch_operations",
			fn:   testBasicBatchOperations,
		},
		{
			name: "uncommitted_batch_is_invisible",
			fn:   testUncommittedBatch,
		},
		{
			name: "batch_commit_closure",
			fn:   testBatchCommitAndClose,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newTestStore(t))
		})
	}
}

func testBasicBatchOperations(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	defer batch.Close() //nolint:errcheck

	keys := [][]byte{[]byte("vault-a"), []byte("vault-b"), []byte("total")}
	values := [][]byte{[]byte("1"), []byte("2"), []byte("3")}
	for i := range keys {
		require.NoError(t, batch.Put(keys[i], values[i]))
	}
	require.NoError(t, batch.Delete(keys[1]))
	require.NoError(t, batch.Commit())

	val, err := store.Get(keys[0])
	require.NoError(t, err)
	assert.Equal(t, values[0], val)

	_, err = store.Get(keys[1])
	assert.ErrorIs(t, err, ErrNotFound)

	val, err = store.Get(keys[2])
	require.NoError(t, err)
	assert.Equal(t, values[2], val)
}

func testUncommittedBatch(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("key"), []byte("value")))
	require.NoError(t, batch.Close())

	_, err := store.Get([]byte("key"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func testBatchCommitAndClose(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("key"), []byte("value")))
	require.NoError(t, batch.Commit())

	assert.ErrorIs(t, batch.Put([]byte("key2"), []byte("value2")), ErrBatchDone)
	assert.ErrorIs(t, batch.Delete([]byte("key2")), ErrBatchDone)
	assert.ErrorIs(t, batch.Commit(), ErrBatchDone)

	assert.NoError(t, batch.Close())
	assert.NoError(t, batch.Close())
}
