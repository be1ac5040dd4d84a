package diskqueue

import (
	"encoding/binary"

	"github.com/flowlog/tlogd/errs"
	"github.com/pingcap/errors"
)

// Framing constants, spec.md §4.1: [u32 length][payload][u8 valid].
const (
	lengthFieldSize = 4
	validFieldSize  = 1
	frameOverhead   = lengthFieldSize + validFieldSize
	validByte       = 1
)

// FramedQueue wraps a DiskQueue with record framing, giving atomic
// append/commit semantics per record; on replay a torn tail ends the stream
// (spec.md §4.1).
type FramedQueue struct {
	dq *DiskQueue
}

func NewFramedQueue(dq *DiskQueue) *FramedQueue {
	return &FramedQueue{dq: dq}
}

// Push appends one record and returns the Location range [start, end) of
// the whole frame (length field through the valid byte).
func (f *FramedQueue) Push(payload []byte) (start, end Location, err error) {
	frame := make([]byte, 0, frameOverhead+len(payload))
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, validByte)
	return f.dq.Append(frame)
}

// Commit makes previously pushed records durable.
func (f *FramedQueue) Commit() error {
	return f.dq.Commit()
}

// Pop authorizes reclamation of frames strictly before upTo.
func (f *FramedQueue) Pop(upTo Location) {
	f.dq.Pop(upTo)
}

// Reader replays frames from a saved recovery Location in push order,
// stopping at end_of_stream once it hits a torn tail or the end of the
// bytes present in the queue files. It does not consult the committed
// Location.
type Reader struct {
	dq  *DiskQueue
	loc Location
	// done is set once a partial tail or end-of-stream has been observed;
	// further ReadNext calls keep returning ErrEndOfStream.
	done bool
}

func (f *FramedQueue) NewReader(from Location) *Reader {
	return &Reader{dq: f.dq, loc: from}
}

// Location returns the reader's current cursor, i.e. where the next frame
// (if any) begins.
func (r *Reader) Location() Location { return r.loc }

// ReadNext returns the next intact record, or tlog.ErrEndOfStream once the
// end of the file data or a torn tail is reached. A torn tail is treated
// as end-of-stream and never surfaced as a record (spec.md §4.1
// invariants). Its bytes are not zero-filled: they stay on disk until an
// Append after SetWriteLocation overwrites them.
func (r *Reader) ReadNext() ([]byte, error) {
	if r.done {
		return nil, errors.WithStack(errs.ErrEndOfStream)
	}

	lenBuf := make([]byte, lengthFieldSize)
	n, err := r.dq.ReadAt(r.loc, lenBuf)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n < lengthFieldSize {
		r.done = true
		return nil, errors.WithStack(errs.ErrEndOfStream)
	}
	payloadLen := binary.BigEndian.Uint32(lenBuf)

	rest := make([]byte, int(payloadLen)+validFieldSize)
	n, err = r.dq.ReadAt(r.loc+lengthFieldSize, rest)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n < len(rest) {
		// Partial commit: length field landed but payload+valid byte
		// didn't fully make it to disk. Treat as a torn tail.
		r.done = true
		return nil, errors.WithStack(errs.ErrEndOfStream)
	}
	if rest[len(rest)-1] != validByte {
		r.done = true
		return nil, errors.WithStack(errs.ErrEndOfStream)
	}

	payload := rest[:payloadLen]
	r.loc += Location(lengthFieldSize + len(rest))
	return payload, nil
}

