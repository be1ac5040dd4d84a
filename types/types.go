// Package types holds the identifiers shared across every layer of a tlogd
// process — messageblock, tlog, rpc, backup — so that none of them has to
// import another just to name a Version or a StorageTeamID.
package types

import "fmt"

// Version is a 64-bit monotonically increasing sequence number assigned by
// the cluster's sequencer. Strictly increasing per group; immutable once
// assigned (SPEC_FULL.md §3).
type Version int64

func (v Version) String() string { return fmt.Sprintf("%d", int64(v)) }

// LogID identifies one generation's persistent state within a group's
// KeyValueStore and DiskQueue (the `logId` used throughout SPEC_FULL.md §4).
type LogID uint64

// StorageTeamID is an opaque 128-bit id partitioning mutations; each team
// maps to exactly one group in a generation.
type StorageTeamID [16]byte

func (id StorageTeamID) String() string { return fmt.Sprintf("%x", id[:]) }

// Tag identifies a storage team's entry within the KeyValueStore's tag-keyed
// families (TagMsg, TagMsgRef, TagPop). In this implementation a team's Tag
// is derived directly from its StorageTeamID.
type Tag [16]byte

func TagForTeam(id StorageTeamID) Tag { return Tag(id) }

// TLogGroupID is an opaque 128-bit id naming the set of teams assigned to
// one group; fixed across generation transitions.
type TLogGroupID [16]byte

func (id TLogGroupID) String() string { return fmt.Sprintf("%x", id[:]) }

// Epoch is the generation counter; strictly increases on each cluster
// recovery.
type Epoch int64
