// Package diskqueue implements the append-only, crash-safe byte queue
// described in SPEC_FULL.md §4.1: a DiskQueue over two physical files with
// durable-prefix truncation, and a FramedQueue on top that gives pushed
// records atomic append/commit semantics and crash-recovery padding.
//
// No DiskQueue source file was available in the retrieval pack this was
// built from (see DESIGN.md); the on-disk layout here — two fixed-size
// files addressed as one logical append-only byte stream via modulo
// arithmetic — is derived directly from spec.md §4.1's description and
// kept deliberately simple: it is not attempting to reproduce the
// original's page-level bookkeeping, only the append/commit/pop/recover
// contract spec.md specifies.
package diskqueue

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/flowlog/tlogd/errs"
	"github.com/pingcap/errors"
)

// Location is an opaque, totally ordered handle into the queue's logical
// byte stream. Lower Locations were pushed earlier.
type Location int64

const defaultFileSize = 64 << 20 // 64MiB per physical file, two files per queue.

// DiskQueue is a byte-oriented append log spanning two physical files,
// addressed as a single logical stream of Locations via fileSize modulo
// arithmetic. It knows nothing about record boundaries; that's FramedQueue's
// job.
type DiskQueue struct {
	mu       sync.Mutex
	dir      string
	fileSize int64
	files    [2]*os.File

	writeLoc     Location // next byte to be written
	committedLoc Location // durable through this point
	poppedLoc    Location // queue may reclaim bytes strictly before this
}

func fileNames(dir string) [2]string {
	return [2]string{filepath.Join(dir, "queue-0.dq"), filepath.Join(dir, "queue-1.dq")}
}

// Open opens or creates a DiskQueue rooted at dir. recoverFrom seeds the
// write/popped watermarks as a hint (e.g. a `recoveryLocation` key in the
// KeyValueStore); pass 0 for a fresh queue. It is only a hint — ReadAt
// always consults the physical file contents, so a caller that replays the
// queue after Open must call SetWriteLocation once it knows exactly where
// intact data ends, before resuming Append.
func Open(dir string, fileSize int64, recoverFrom Location) (*DiskQueue, error) {
	if fileSize <= 0 {
		fileSize = defaultFileSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WithStack(err)
	}
	names := fileNames(dir)
	var files [2]*os.File
	for i, name := range names {
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		files[i] = f
	}
	q := &DiskQueue{
		dir:          dir,
		fileSize:     fileSize,
		files:        files,
		writeLoc:     recoverFrom,
		committedLoc: recoverFrom,
		poppedLoc:    recoverFrom,
	}
	return q, nil
}

func (q *DiskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var firstErr error
	for _, f := range q.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// segment returns which physical file Location loc lives in, and the byte
// offset within that file.
func (q *DiskQueue) segment(loc Location) (fileIndex int, offset int64) {
	fileIndex = int((int64(loc) / q.fileSize) % 2)
	offset = int64(loc) % q.fileSize
	return
}

// capacity is the total amount of not-yet-popped data the two files can
// hold before a write must be refused.
func (q *DiskQueue) capacity() int64 { return 2 * q.fileSize }

// Append writes data at the current write Location without making it
// durable. Returns the [start, end) Location range it now occupies. The
// data straddles a file boundary transparently; it must not exceed the
// combined two-file capacity.
func (q *DiskQueue) Append(data []byte) (start, end Location, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if int64(len(data)) > q.capacity() {
		return 0, 0, errors.Errorf("diskqueue: record of %d bytes exceeds queue capacity %d", len(data), q.capacity())
	}
	if int64(q.writeLoc)+int64(len(data))-int64(q.poppedLoc) > q.capacity() {
		return 0, 0, errors.WithStack(errs.ErrQueueFull)
	}

	start = q.writeLoc
	remaining := data
	loc := q.writeLoc
	for len(remaining) > 0 {
		fi, off := q.segment(loc)
		space := q.fileSize - off
		n := int64(len(remaining))
		if n > space {
			n = space
		}
		if _, err := q.files[fi].WriteAt(remaining[:n], off); err != nil {
			return 0, 0, errors.WithStack(err)
		}
		remaining = remaining[n:]
		loc += Location(n)
	}
	q.writeLoc = loc
	end = loc
	return start, end, nil
}

// Commit fsyncs every file touched since the last Commit and advances the
// durable watermark to the current write Location.
func (q *DiskQueue) Commit() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, f := range q.files {
		if err := f.Sync(); err != nil {
			return errors.WithStack(err)
		}
	}
	q.committedLoc = q.writeLoc
	return nil
}

// Pop authorizes the queue to reclaim bytes strictly before upTo. It never
// moves the watermark backwards.
func (q *DiskQueue) Pop(upTo Location) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if upTo > q.poppedLoc {
		q.poppedLoc = upTo
	}
}

func (q *DiskQueue) WriteLocation() Location {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writeLoc
}

// SetWriteLocation repositions the writer after recovery replay has
// determined where the last intact frame ends. Subsequent Append calls
// resume exactly there, overwriting whatever torn or stale bytes happen to
// still be physically present beyond it. The caller (generation recovery)
// is also asserting that everything up to loc is durable.
func (q *DiskQueue) SetWriteLocation(loc Location) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.writeLoc = loc
	q.committedLoc = loc
}

func (q *DiskQueue) CommittedLocation() Location {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.committedLoc
}

func (q *DiskQueue) PoppedLocation() Location {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.poppedLoc
}

// ReadAt fills buf with up to len(buf) bytes starting at loc, returning the
// number of bytes actually present on disk. Availability is discovered from
// the physical file contents at read time, not from an in-memory watermark —
// that's what makes replay after a restart see exactly what made it to
// stable storage, including a frame whose trailing bytes never arrived.
// ReadAt never errors solely because fewer bytes than requested were
// available; callers (FramedQueue recovery) use the short read to detect a
// partial tail.
func (q *DiskQueue) ReadAt(loc Location, buf []byte) (n int, err error) {
	q.mu.Lock()
	fileSize := q.fileSize
	files := q.files
	q.mu.Unlock()

	want := int64(len(buf))
	read := int64(0)
	for read < want {
		fi, off := int((int64(loc)/fileSize)%2), int64(loc)%fileSize
		space := fileSize - off
		toRead := want - read
		if toRead > space {
			toRead = space
		}
		rn, ferr := files[fi].ReadAt(buf[read:read+toRead], off)
		read += int64(rn)
		loc += Location(rn)
		if ferr != nil {
			if ferr == io.EOF {
				break
			}
			return int(read), errors.WithStack(ferr)
		}
		if int64(rn) < toRead {
			break
		}
	}
	return int(read), nil
}

func (l Location) String() string { return fmt.Sprintf("%d", int64(l)) }
