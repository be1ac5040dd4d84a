// Package cluster declares the boundary interfaces ServerData needs from
// the cluster recovery orchestration, commit proxies, and storage servers
// that spec.md §1 places out of scope — named here only so tlog.ServerData
// can depend on a stable contract instead of a concrete implementation
// (spec.md §1 "external collaborators referenced only by interface";
// SPEC_FULL.md §9 design note on deep-inheritance/dynamic-dispatch
// replaced by data-driven interfaces).
package cluster

import (
	"context"

	"github.com/flowlog/tlogd/types"
)

// LogSystemConfig is the subset of cluster recovery state a TLog process
// needs to answer "has this generation been superseded?" in its
// rejoinMasters loop (spec.md §4.8).
type LogSystemConfig struct {
	RecoveryCount            types.Epoch
	FullyRecovered           bool
	TLogs                    []types.LogID
	PriorCommittedLogServers []types.LogID
}

func (c LogSystemConfig) contains(id types.LogID) bool {
	for _, x := range c.TLogs {
		if x == id {
			return true
		}
	}
	for _, x := range c.PriorCommittedLogServers {
		if x == id {
			return true
		}
	}
	return false
}

// Superseded reports whether a generation with the given id and
// recoveryCount has been displaced by cluster recovery: absent from both
// tLogs and priorCommittedLogServers, and the observed recoveryCount
// strictly exceeds ours, or equals ours once recovery is FULLY_RECOVERED
// (spec.md §4.8 rejoinMasters).
func (c LogSystemConfig) Superseded(id types.LogID, recoveryCount types.Epoch) bool {
	if c.contains(id) {
		return false
	}
	if c.RecoveryCount > recoveryCount {
		return true
	}
	return c.RecoveryCount == recoveryCount && c.FullyRecovered
}

// InfoSource is polled by ServerData's rejoinMasters loop to learn the
// cluster's current recovery state.
type InfoSource interface {
	CurrentLogSystemConfig(ctx context.Context) (LogSystemConfig, error)
}

// RecruitmentRequest is the subset of InitializeTLog's parameters that
// comes from the (out-of-scope) recruiter.
type RecruitmentRequest struct {
	RecruitmentID string
	Epoch         types.Epoch
	TLogGroups    []types.TLogGroupID
	IsPrimary     bool
}
