package tlog

import "github.com/flowlog/tlogd/errs"

// Re-exported here so tlog's own call sites read naturally
// (tlog.ErrTLogStopped) while the sentinel values themselves live in
// package errs, shared with diskqueue and backup to keep errors.Is
// comparisons valid across package boundaries. See spec.md §7.
var (
	ErrTLogStopped        = errs.ErrTLogStopped
	ErrGroupNotFound      = errs.ErrGroupNotFound
	ErrWorkerRemoved      = errs.ErrWorkerRemoved
	ErrRecruitmentFailed  = errs.ErrRecruitmentFailed
	ErrIOTimeout          = errs.ErrIOTimeout
	ErrIODegraded         = errs.ErrIODegraded
	ErrCorruptLog         = errs.ErrCorruptLog
	ErrCorruptPadding     = errs.ErrCorruptPadding
	ErrCorruptData        = errs.ErrCorruptData
	ErrUnsupportedVersion = errs.ErrUnsupportedVersion
	ErrEndOfStream        = errs.ErrEndOfStream
	ErrOperationCancelled = errs.ErrOperationCancelled
)
