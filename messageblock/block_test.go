package messageblock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockAppendAndBytes(t *testing.T) {
	b := NewBlock(16)
	off, ok := b.Append([]byte("hello"))
	require.True(t, ok)
	require.Equal(t, 0, off)
	require.Equal(t, []byte("hello"), b.Bytes(off, 5))

	off2, ok := b.Append([]byte("!!"))
	require.True(t, ok)
	require.Equal(t, 5, off2)
	require.Equal(t, []byte("!!"), b.Bytes(off2, 2))
}

func TestBlockAppendRefusesWhenFull(t *testing.T) {
	b := NewBlock(4)
	_, ok := b.Append([]byte("abcd"))
	require.True(t, ok)
	_, ok = b.Append([]byte("e"))
	require.False(t, ok, "block has no remaining capacity")
}

func TestBlockAppendRefusesWhenSealed(t *testing.T) {
	b := NewBlock(16)
	b.Seal()
	_, ok := b.Append([]byte("x"))
	require.False(t, ok)
}

func TestBlockRefCounting(t *testing.T) {
	b := NewBlock(16)
	require.EqualValues(t, 1, b.RefCount())
	b.Retain()
	require.EqualValues(t, 2, b.RefCount())
	require.False(t, b.Release())
	require.EqualValues(t, 1, b.RefCount())
	require.True(t, b.Release())
}
