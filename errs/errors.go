// Package errs holds the closed error-kind enumeration from spec.md §7,
// shared by every package that needs to raise or compare one of these
// kinds (tlog, diskqueue, backup). Callers compare with errors.Is and
// should wrap these with github.com/pingcap/errors.WithStack at the point
// of origin so logs retain a stack trace without losing the sentinel
// identity errors.Is relies on.
package errs

import "errors"

var (
	// ErrTLogStopped: commit attempted against a stopped generation, or a
	// commit was waiting for queue-commit when the generation stopped.
	ErrTLogStopped = errors.New("tlog_stopped")
	// ErrGroupNotFound: commit for an unknown storageTeamID in the current
	// active generation.
	ErrGroupNotFound = errors.New("tlog_group_not_found")
	// ErrWorkerRemoved: generation displaced by cluster info; removes all
	// generations of this worker.
	ErrWorkerRemoved = errors.New("worker_removed")
	// ErrRecruitmentFailed: fatal error during TLog start; in-flight
	// recruitment promises are rejected.
	ErrRecruitmentFailed = errors.New("recruitment_failed")
	// ErrIOTimeout: disk subsystem failed to respond within the configured
	// duration.
	ErrIOTimeout = errors.New("io_timeout")
	// ErrIODegraded: disk subsystem responded but outside acceptable
	// latency/quality bounds.
	ErrIODegraded = errors.New("io_degraded_or_timeout")
	// ErrCorruptLog: DiskQueue framing violated an invariant that isn't the
	// expected "partial tail" case.
	ErrCorruptLog = errors.New("corrupt_log")
	// ErrCorruptPadding: a DiskQueue or backup-log padding byte wasn't the
	// expected sentinel value.
	ErrCorruptPadding = errors.New("corrupt_padding")
	// ErrCorruptData: backup log mutation stitching saw a part-sequence gap
	// or a first part other than zero.
	ErrCorruptData = errors.New("corrupt_data")
	// ErrUnsupportedVersion: backup log file's magic version isn't the one
	// this decoder understands.
	ErrUnsupportedVersion = errors.New("unsupported_version")
	// ErrEndOfStream: normal termination signal from DiskQueue replay.
	ErrEndOfStream = errors.New("end_of_stream")
	// ErrOperationCancelled: non-fatal, emitted during shutdown.
	ErrOperationCancelled = errors.New("operation_cancelled")
	// ErrQueueFull: DiskQueue has no room left because Pop hasn't advanced.
	ErrQueueFull = errors.New("diskqueue_full")
)
