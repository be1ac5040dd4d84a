package engine

import "encoding/binary"

// Key family prefixes for the persistent KeyValueStore, as listed in
// SPEC_FULL.md / spec.md §4.2. Keys are byte-lexicographically ordered, so
// every family below sorts independently of the others as long as no
// prefix is itself a prefix of another — hence the trailing "/".
var (
	prefixFormat          = []byte("Format/")
	prefixProtocolVersion = []byte("ProtocolVersion/")
	prefixSpillType       = []byte("TLogSpillType/")
	prefixRecoveryCount   = []byte("DbRecoveryCount/")
	prefixVersion         = []byte("version/")
	prefixKnownCommitted  = []byte("knownCommitted/")
	prefixLocality        = []byte("Locality/")
	keyRecoveryLocation   = []byte("recoveryLocation")
	prefixTagMsg          = []byte("TagMsg/")
	prefixTagMsgRef       = []byte("TagMsgRef/")
	prefixTagPop          = []byte("TagPop/")
)

func withLogID(prefix []byte, logID uint64) []byte {
	k := make([]byte, 0, len(prefix)+8)
	k = append(k, prefix...)
	return binary.BigEndian.AppendUint64(k, logID)
}

func FormatKey(logID uint64) []byte          { return withLogID(prefixFormat, logID) }
func ProtocolVersionKey(logID uint64) []byte { return withLogID(prefixProtocolVersion, logID) }
func SpillTypeKey(logID uint64) []byte       { return withLogID(prefixSpillType, logID) }
func RecoveryCountKey(logID uint64) []byte   { return withLogID(prefixRecoveryCount, logID) }
func VersionKey(logID uint64) []byte         { return withLogID(prefixVersion, logID) }
func KnownCommittedKey(logID uint64) []byte  { return withLogID(prefixKnownCommitted, logID) }
func LocalityKey(logID uint64) []byte        { return withLogID(prefixLocality, logID) }
func RecoveryLocationKey() []byte            { return keyRecoveryLocation }

// TagMsgKey addresses a spilled-by-value message blob for (logID, tag, version).
func TagMsgKey(logID uint64, tag [16]byte, version uint64) []byte {
	return tagKey(prefixTagMsg, logID, tag, version)
}

// TagMsgRefKey addresses a spilled-by-reference DiskQueue location record.
func TagMsgRefKey(logID uint64, tag [16]byte, version uint64) []byte {
	return tagKey(prefixTagMsgRef, logID, tag, version)
}

// TagPopKey addresses the popped-through version for (logID, tag).
func TagPopKey(logID uint64, tag [16]byte) []byte {
	k := make([]byte, 0, len(prefixTagPop)+8+16)
	k = append(k, prefixTagPop...)
	k = binary.BigEndian.AppendUint64(k, logID)
	return append(k, tag[:]...)
}

func tagKey(prefix []byte, logID uint64, tag [16]byte, version uint64) []byte {
	k := make([]byte, 0, len(prefix)+8+16+8)
	k = append(k, prefix...)
	k = binary.BigEndian.AppendUint64(k, logID)
	k = append(k, tag[:]...)
	return binary.BigEndian.AppendUint64(k, version)
}

// TagFamilyRange returns the half-open [start, end) key range covering every
// TagMsg/TagMsgRef entry for (logID, tag) with version in [beginVersion, endVersion].
func TagFamilyRange(prefix []byte, logID uint64, tag [16]byte, beginVersion, endVersion uint64) (start, end []byte) {
	start = tagKey(prefix, logID, tag, beginVersion)
	end = tagKey(prefix, logID, tag, endVersion)
	end = append(end, 0xFF) // make end exclusive-inclusive of endVersion itself
	return
}

// TagMsgRange returns the [start, end) range over TagMsg entries for
// (logID, tag) with version in [beginVersion, endVersion].
func TagMsgRange(logID uint64, tag [16]byte, beginVersion, endVersion uint64) (start, end []byte) {
	return TagFamilyRange(prefixTagMsg, logID, tag, beginVersion, endVersion)
}

// TagMsgRefRange returns the [start, end) range over TagMsgRef entries for
// (logID, tag) with version in [beginVersion, endVersion].
func TagMsgRefRange(logID uint64, tag [16]byte, beginVersion, endVersion uint64) (start, end []byte) {
	return TagFamilyRange(prefixTagMsgRef, logID, tag, beginVersion, endVersion)
}
