package tlog

import (
	"context"
	"sync"

	"github.com/pingcap/errors"

	"github.com/flowlog/tlogd/errs"
	"github.com/flowlog/tlogd/types"
)

// versionNotifier replaces the source's `whenAtLeast` on a notified value:
// goroutines block on WhenAtLeast until Set raises the value past their
// target, ctx is cancelled, or the generation's stop channel closes
// (SPEC_FULL.md §5 concurrency-model note). It's the channel-replacement
// broadcast pattern rather than sync.Cond, because ctx cancellation and a
// stop signal both need to race the wakeup in a select.
type versionNotifier struct {
	mu     sync.Mutex
	value  types.Version
	waitCh chan struct{}
}

func newVersionNotifier() *versionNotifier {
	return &versionNotifier{waitCh: make(chan struct{})}
}

func (n *versionNotifier) Set(v types.Version) {
	n.mu.Lock()
	if v <= n.value {
		n.mu.Unlock()
		return
	}
	n.value = v
	ch := n.waitCh
	n.waitCh = make(chan struct{})
	n.mu.Unlock()
	close(ch)
}

func (n *versionNotifier) Get() types.Version {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value
}

// WhenAtLeast blocks until the notifier's value is >= v. It returns
// operation_cancelled if ctx is done first, or tlog_stopped if stop closes
// first.
func (n *versionNotifier) WhenAtLeast(ctx context.Context, v types.Version, stop <-chan struct{}) error {
	for {
		n.mu.Lock()
		if n.value >= v {
			n.mu.Unlock()
			return nil
		}
		ch := n.waitCh
		n.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return errors.WithStack(errs.ErrOperationCancelled)
		case <-stop:
			return errors.WithStack(errs.ErrTLogStopped)
		}
	}
}
