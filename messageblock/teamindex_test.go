package messageblock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowlog/tlogd/types"
)

func appendTo(t *testing.T, idx *TeamIndex, block *Block, version types.Version, payload string) {
	off, ok := block.Append([]byte(payload))
	require.True(t, ok)
	require.NoError(t, idx.Append(version, block, off, len(payload)))
}

func TestTeamIndexAppendAndPeek(t *testing.T) {
	idx := NewTeamIndex()
	block := NewBlock(64)

	appendTo(t, idx, block, 10, "a")
	appendTo(t, idx, block, 20, "b")
	appendTo(t, idx, block, 30, "c")
	require.Equal(t, 3, idx.Len())

	refs := idx.PeekFrom(15)
	defer ReleaseRefs(refs)
	require.Len(t, refs, 2)
	require.Equal(t, types.Version(20), refs[0].Version)
	require.Equal(t, []byte("b"), refs[0].Bytes())
	require.Equal(t, types.Version(30), refs[1].Version)
}

func TestTeamIndexRejectsNonIncreasingVersion(t *testing.T) {
	idx := NewTeamIndex()
	block := NewBlock(64)
	appendTo(t, idx, block, 10, "a")

	off, ok := block.Append([]byte("dup"))
	require.True(t, ok)
	require.Error(t, idx.Append(10, block, off, 3))
}

func TestTeamIndexPopFrontReclaimsBlocks(t *testing.T) {
	idx := NewTeamIndex()
	block := NewBlock(64)
	appendTo(t, idx, block, 10, "a")
	appendTo(t, idx, block, 20, "b")
	appendTo(t, idx, block, 30, "c")
	// NewBlock starts the caller's own reference at 1; three appends each
	// retained it, so refcount is 4 before any pop.
	require.EqualValues(t, 4, block.RefCount())

	popped := idx.PopFront(20)
	require.Len(t, popped, 2)
	require.EqualValues(t, 2, block.RefCount())
	require.Equal(t, 1, idx.Len())

	front, ok := idx.Front()
	require.True(t, ok)
	require.Equal(t, types.Version(30), front.Version)

	popped = idx.PopFront(5)
	require.Empty(t, popped)
	require.Equal(t, 1, idx.Len())
}
