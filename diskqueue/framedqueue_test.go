package diskqueue

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/flowlog/tlogd/errs"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "tlogd-diskqueue")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestFramedQueuePushCommitReadBack(t *testing.T) {
	dir := tempDir(t)
	dq, err := Open(dir, 4096, 0)
	require.NoError(t, err)
	fq := NewFramedQueue(dq)

	records := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, r := range records {
		_, _, err := fq.Push(r)
		require.NoError(t, err)
	}
	require.NoError(t, fq.Commit())

	reader := fq.NewReader(0)
	for _, want := range records {
		got, err := reader.ReadNext()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err = reader.ReadNext()
	require.ErrorIs(t, err, errs.ErrEndOfStream)
	require.NoError(t, dq.Close())
}

// TestCrashRecoveryDropsTornTail mirrors scenario S4: push and commit frames
// for v=10,20,30, then zero the trailing valid byte of v=30's frame on disk
// to simulate a crash mid-write. Replay must yield v=10 and v=20 only.
func TestCrashRecoveryDropsTornTail(t *testing.T) {
	dir := tempDir(t)
	dq, err := Open(dir, 4096, 0)
	require.NoError(t, err)
	fq := NewFramedQueue(dq)

	_, _, err = fq.Push([]byte("v10"))
	require.NoError(t, err)
	_, _, err = fq.Push([]byte("v20"))
	require.NoError(t, err)
	require.NoError(t, fq.Commit())

	v30Start, v30End, err := fq.Push([]byte("v30"))
	require.NoError(t, err)
	require.NoError(t, fq.Commit()) // simulate the torn write landing durably except its last byte

	require.NoError(t, dq.Close())

	// Overwrite the trailing valid byte of the v=30 frame with 0 directly on
	// disk, simulating a crash that lost the last fsync'd byte.
	truncateLastByte(t, dir, v30Start, v30End)

	dq2, err := Open(dir, 4096, 0)
	require.NoError(t, err)
	fq2 := NewFramedQueue(dq2)
	reader := fq2.NewReader(0)

	got, err := reader.ReadNext()
	require.NoError(t, err)
	require.Equal(t, []byte("v10"), got)

	got, err = reader.ReadNext()
	require.NoError(t, err)
	require.Equal(t, []byte("v20"), got)

	_, err = reader.ReadNext()
	require.ErrorIs(t, err, errs.ErrEndOfStream)

	// Recovery hands the reader's final cursor back to the queue so the
	// writer resumes exactly where intact data ends, overwriting the torn
	// v=30 bytes still physically present on disk past it.
	dq2.SetWriteLocation(reader.Location())
	_, _, err = fq2.Push([]byte("v40"))
	require.NoError(t, err)
	require.NoError(t, dq2.Close())

	dq3, err := Open(dir, 4096, 0)
	require.NoError(t, err)
	fq3 := NewFramedQueue(dq3)
	reader3 := fq3.NewReader(0)

	got, err = reader3.ReadNext()
	require.NoError(t, err)
	require.Equal(t, []byte("v10"), got)
	got, err = reader3.ReadNext()
	require.NoError(t, err)
	require.Equal(t, []byte("v20"), got)
	got, err = reader3.ReadNext()
	require.NoError(t, err)
	require.Equal(t, []byte("v40"), got)
	_, err = reader3.ReadNext()
	require.ErrorIs(t, err, errs.ErrEndOfStream)
	require.NoError(t, dq3.Close())
}

func truncateLastByte(t *testing.T, dir string, start, end Location) {
	fileSize := int64(4096)
	lastByteLoc := end - 1
	fi, off := int((int64(lastByteLoc)/fileSize)%2), int64(lastByteLoc)%fileSize
	names := fileNames(dir)
	f, err := os.OpenFile(names[fi], os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0}, off)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
