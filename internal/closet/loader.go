package closet

import (
	"context"
	"sync"

	"github.com/erazemk/garderoba/internal/model"
)

// FetchFunc reads one view of the closet.
type FetchFunc func(ctx context.Context) ([]model.Item, error)

// Loader serialises overlapping loads of one view. Starting a load cancels the
// one in flight, and a result that arrives after a newer load was started is
// discarded with ErrSuperseded, so the published view always belongs to the
// latest request.
type Loader struct {
	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	view    []model.Item
	viewSeq uint64
}

// Load runs fetch as the newest request.
func (l *Loader) Load(ctx context.Context, fetch FetchFunc) ([]model.Item, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	items, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return nil, ErrSuperseded
	}
	l.cancel = nil
	if err != nil {
		return nil, err
	}
	l.view = items
	l.viewSeq = seq
	return items, nil
}

// View returns the last published result and the sequence number of the load
// that produced it. A zero sequence means nothing was published yet.
func (l *Loader) View() ([]model.Item, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view, l.viewSeq
}
