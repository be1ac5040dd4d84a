package engine

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	dir, err := ioutil.TempDir("", "tlogd-engine")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteBatchSetAndReadValue(t *testing.T) {
	s := newTestStore(t)
	var wb WriteBatch
	wb.Set(VersionKey(1), []byte("10"))
	require.NoError(t, wb.Commit(s))

	val, found, err := s.ReadValue(VersionKey(1))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("10"), val)

	_, found, err = s.ReadValue(VersionKey(2))
	require.NoError(t, err)
	require.False(t, found)
}

func TestWriteBatchClearRange(t *testing.T) {
	s := newTestStore(t)
	tag := [16]byte{1}
	var wb WriteBatch
	for v := uint64(1); v <= 5; v++ {
		wb.Set(TagMsgKey(1, tag, v), []byte{byte(v)})
	}
	require.NoError(t, wb.Commit(s))

	start, end := TagFamilyRange(prefixTagMsg, 1, tag, 1, 3)
	kvs, err := s.ReadRange(start, end)
	require.NoError(t, err)
	require.Len(t, kvs, 3)

	require.NoError(t, wb.ClearRange(s, start, end))
	require.NoError(t, wb.Commit(s))

	kvs, err = s.ReadRange(start, end)
	require.NoError(t, err)
	require.Len(t, kvs, 0)

	remaining, err := s.ReadRange(TagMsgKey(1, tag, 0), TagMsgKey(1, tag, 10))
	require.NoError(t, err)
	require.Len(t, remaining, 2)
}
