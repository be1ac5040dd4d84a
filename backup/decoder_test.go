package backup

import (
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/errs"
)

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint64(b []byte, v uint64) []byte {
	for i := 7; i >= 0; i-- {
		b = append(b, byte(v>>(8*uint(i))))
	}
	return b
}

func makeKey(version int64, part int32) []byte {
	blockIndex := int32(version / logRangeBlockSize)
	hash := hashlittleInt32(blockIndex)
	var key []byte
	key = append(key, hash)
	key = appendUint64(key, uint64(version))
	key = appendUint32(key, uint32(part))
	return key
}

// makeValue builds a record value containing a single mutation, with the
// includeVersion/valLength header spec.md §4.9 requires.
func makeValue(mutationType uint32, p1, p2 []byte) []byte {
	var mutBuf []byte
	mutBuf = appendUint32(mutBuf, mutationType)
	mutBuf = appendUint32(mutBuf, uint32(len(p1)))
	mutBuf = appendUint32(mutBuf, uint32(len(p2)))
	mutBuf = append(mutBuf, p1...)
	mutBuf = append(mutBuf, p2...)

	var value []byte
	value = appendUint64(value, 0) // includeVersion, unused by the decoder
	value = appendUint32(value, uint32(len(mutBuf)))
	value = append(value, mutBuf...)
	return value
}

func makeBlock(blockSize int, records [][2][]byte) []byte {
	block := make([]byte, 0, blockSize)
	block = appendUint32(block, magicVersion)
	for _, rec := range records {
		key, value := rec[0], rec[1]
		block = appendUint32(block, uint32(len(key)))
		block = append(block, key...)
		block = appendUint32(block, uint32(len(value)))
		block = append(block, value...)
	}
	for len(block) < blockSize {
		block = append(block, 0xFF)
	}
	return block
}

func TestDecoderSinglePartRoundTrip(t *testing.T) {
	key := makeKey(100, 0)
	value := makeValue(0, []byte("key1"), []byte("val1"))
	block := makeBlock(256, [][2][]byte{{key, value}})

	d, err := NewDecoder(block, 256)
	require.NoError(t, err)
	require.False(t, d.Finished())

	vm, err := d.Next()
	require.NoError(t, err)
	require.EqualValues(t, 100, vm.Version)
	require.Len(t, vm.Mutations, 1)
	require.Equal(t, []byte("key1"), vm.Mutations[0].Param1)
	require.Equal(t, []byte("val1"), vm.Mutations[0].Param2)
	require.True(t, d.Finished())
}

// TestDecoderStitchesMultiPartVersion covers the scenario where one
// logical version's value was split across two records with ascending
// parts (spec.md §4.9, §8 scenario S6).
func TestDecoderStitchesMultiPartVersion(t *testing.T) {
	fullValue := makeValue(1, []byte("long-key"), []byte("this-is-a-long-value-split-across-two-records"))
	mid := len(fullValue) / 2
	part0 := fullValue[:mid]
	part1 := fullValue[mid:]

	block := makeBlock(512, [][2][]byte{
		{makeKey(200, 0), part0},
		{makeKey(200, 1), part1},
	})

	d, err := NewDecoder(block, 512)
	require.NoError(t, err)

	vm, err := d.Next()
	require.NoError(t, err)
	require.EqualValues(t, 200, vm.Version)
	require.Len(t, vm.Mutations, 1)
	require.Equal(t, []byte("long-key"), vm.Mutations[0].Param1)
	require.True(t, d.Finished())
}

// TestDecoderPartGapIsCorruptData covers the missing-part case from
// spec.md §8 scenario S6: part 0 present, part 1 missing, part 2 present.
func TestDecoderPartGapIsCorruptData(t *testing.T) {
	fullValue := makeValue(1, []byte("k"), []byte("v"))
	block := makeBlock(256, [][2][]byte{
		{makeKey(300, 0), fullValue},
		{makeKey(300, 2), fullValue},
	})

	d, err := NewDecoder(block, 256)
	require.NoError(t, err)

	_, err = d.Next()
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errs.ErrCorruptData))
}

func TestDecoderFirstPartMustBeZero(t *testing.T) {
	value := makeValue(0, []byte("k"), []byte("v"))
	block := makeBlock(256, [][2][]byte{{makeKey(400, 1), value}})

	d, err := NewDecoder(block, 256)
	require.NoError(t, err)

	_, err = d.Next()
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errs.ErrCorruptData))
}

func TestDecoderCorruptPadding(t *testing.T) {
	key := makeKey(500, 0)
	value := makeValue(0, []byte("k"), []byte("v"))
	block := makeBlock(256, [][2][]byte{{key, value}})
	block[len(block)-1] = 0x00 // corrupt a padding byte

	_, err := NewDecoder(block, 256)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errs.ErrCorruptPadding))
}

func TestDecoderUnsupportedVersion(t *testing.T) {
	block := make([]byte, 64)
	block = appendUint32(block[:0], magicVersion+1)
	block = append(block, make([]byte, 60)...)

	_, err := NewDecoder(block, 64)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errs.ErrUnsupportedVersion))
}

func TestDecoderBadKeyHashIsCorruptData(t *testing.T) {
	key := makeKey(600, 0)
	key[0] ^= 0xFF // flip the hash byte
	value := makeValue(0, []byte("k"), []byte("v"))
	block := makeBlock(256, [][2][]byte{{key, value}})

	d, err := NewDecoder(block, 256)
	require.NoError(t, err)

	_, err = d.Next()
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errs.ErrCorruptData))
}
