// Package backup decodes the backup mutation log file format a tlogd
// process's spilled data is eventually packaged into (spec.md §4.9). It
// reads a durable external format that other tools produce and consume
// independently of the TLog process, so this package only ever reads.
package backup

import (
	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/types"
)

// magicVersion is the only backup log file version this decoder accepts
// (BACKUP_AGENT_MLOG_VERSION in the source format).
const magicVersion uint32 = 2001

// logRangeBlockSize is the divisor used to compute a version's key hash
// (LOG_RANGE_BLOCK_SIZE in the source format's default knobs).
const logRangeBlockSize = 1024000

// Mutation is one packed mutation as it appears inside a record's stitched
// value (spec.md §4.9 Record value decoding).
type Mutation struct {
	Type   uint32
	Param1 []byte
	Param2 []byte
}

// VersionedMutations is everything decoded for one logical commit version,
// after stitching every part back together in order.
type VersionedMutations struct {
	Version   types.Version
	Mutations []Mutation
}

type kvPair struct {
	key   []byte
	value []byte
}

// Decoder walks a backup log file's fixed-size blocks and yields one
// VersionedMutations per logical version, stitching any multi-part value
// groups as it goes.
type Decoder struct {
	kvs []kvPair
	pos int
}

// NewDecoder decodes every block of data (each blockSize bytes, except
// possibly the last) up front and returns a Decoder ready to walk the
// resulting key/value pairs in order.
func NewDecoder(data []byte, blockSize int) (*Decoder, error) {
	if blockSize <= 0 {
		return nil, errors.Errorf("backup: invalid block size %d", blockSize)
	}
	var kvs []kvPair
	for offset := 0; offset < len(data); offset += blockSize {
		end := offset + blockSize
		if end > len(data) {
			end = len(data)
		}
		blockKVs, err := decodeBlock(data[offset:end])
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, blockKVs...)
	}
	return &Decoder{kvs: kvs}, nil
}

// decodeBlock validates the block's magic version, reads its records until
// either the data runs out or a 0xFF sentinel byte is hit, and confirms
// every byte after that point is 0xFF padding (spec.md §4.9 File format).
func decodeBlock(block []byte) ([]kvPair, error) {
	if len(block) < 4 {
		return nil, errors.WithStack(errs.ErrUnsupportedVersion)
	}
	if readUint32(block[0:4]) != magicVersion {
		return nil, errors.WithStack(errs.ErrUnsupportedVersion)
	}

	pos := 4
	var kvs []kvPair
	for pos < len(block) && block[pos] != 0xFF {
		if pos+4 > len(block) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		klen := readUint32(block[pos : pos+4])
		pos += 4
		if pos+int(klen) > len(block) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		key := block[pos : pos+int(klen)]
		pos += int(klen)

		if pos+4 > len(block) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		vlen := readUint32(block[pos : pos+4])
		pos += 4
		if pos+int(vlen) > len(block) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		value := block[pos : pos+int(vlen)]
		pos += int(vlen)

		kvs = append(kvs, kvPair{key: key, value: value})
	}

	for ; pos < len(block); pos++ {
		if block[pos] != 0xFF {
			return nil, errors.WithStack(errs.ErrCorruptPadding)
		}
	}
	return kvs, nil
}

// Finished reports whether every record has been consumed.
func (d *Decoder) Finished() bool {
	return d.pos >= len(d.kvs)
}

// Next decodes and returns the next logical version's mutations, stitching
// together however many parts it was split across (spec.md §4.9 Record
// value decoding). Callers must check Finished before calling.
func (d *Decoder) Next() (*VersionedMutations, error) {
	if d.Finished() {
		return nil, errors.Errorf("backup: Next called with no records remaining")
	}

	version, part, err := decodeKey(d.kvs[d.pos].key)
	if err != nil {
		return nil, err
	}
	if part != 0 {
		return nil, errors.WithStack(errs.ErrCorruptData)
	}

	values := [][]byte{d.kvs[d.pos].value}
	lastPart := int32(0)
	idx := d.pos + 1
	for idx < len(d.kvs) {
		nextVersion, nextPart, err := decodeKey(d.kvs[idx].key)
		if err != nil {
			return nil, err
		}
		if nextVersion != version {
			break
		}
		if lastPart+1 != nextPart {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		values = append(values, d.kvs[idx].value)
		lastPart = nextPart
		idx++
	}

	buf := values[0]
	if len(values) > 1 {
		total := 0
		for _, v := range values {
			total += len(v)
		}
		stitched := make([]byte, 0, total)
		for _, v := range values {
			stitched = append(stitched, v...)
		}
		buf = stitched
	}

	mutations, err := decodeValue(buf)
	if err != nil {
		return nil, err
	}
	d.pos = idx
	return &VersionedMutations{Version: version, Mutations: mutations}, nil
}

// decodeKey parses a record key (1+8+4 bytes: hash, big-endian version,
// big-endian part) and validates its hash byte (spec.md §4.9 Record key
// decoding).
func decodeKey(key []byte) (types.Version, int32, error) {
	if len(key) != 13 {
		return 0, 0, errors.WithStack(errs.ErrCorruptData)
	}
	hash := key[0]
	version := types.Version(readUint64(key[1:9]))
	part := int32(readUint32(key[9:13]))

	blockIndex := int32(int64(version) / logRangeBlockSize)
	if hashlittleInt32(blockIndex) != hash {
		return 0, 0, errors.WithStack(errs.ErrCorruptData)
	}
	return version, part, nil
}

// decodeValue parses a record value group (includeVersion:u64, valLength:u32,
// then a packed mutation sequence) per spec.md §4.9 Record value decoding.
func decodeValue(value []byte) ([]Mutation, error) {
	if len(value) < 12 {
		return nil, errors.WithStack(errs.ErrCorruptData)
	}
	valLength := readUint32(value[8:12])
	if int(valLength) != len(value)-12 {
		return nil, errors.WithStack(errs.ErrCorruptData)
	}

	var mutations []Mutation
	pos := 12
	for pos < len(value) {
		if pos+12 > len(value) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		typ := readUint32(value[pos : pos+4])
		p1len := readUint32(value[pos+4 : pos+8])
		p2len := readUint32(value[pos+8 : pos+12])
		pos += 12

		if pos+int(p1len)+int(p2len) > len(value) {
			return nil, errors.WithStack(errs.ErrCorruptData)
		}
		p1 := value[pos : pos+int(p1len)]
		pos += int(p1len)
		p2 := value[pos : pos+int(p2len)]
		pos += int(p2len)

		mutations = append(mutations, Mutation{Type: typ, Param1: p1, Param2: p2})
	}
	return mutations, nil
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func readUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
