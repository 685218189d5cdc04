package realtime

import (
	"context"
	"sync"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
)

var _ ports.ChangeFeed = (*LocalFeed)(nil)

// LocalFeed canal en proceso para una sola instancia. Entrega de forma síncrona.
type LocalFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]subscriber
}

type subscriber struct {
	filter   ports.Filter
	onChange func(ports.Change)
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: map[string]map[int]subscriber{}}
}

func (f *LocalFeed) Publish(ctx context.Context, c ports.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	targets := make([]subscriber, 0, len(f.subs[c.Table]))
	for _, s := range f.subs[c.Table] {
		targets = append(targets, s)
	}
	f.mu.Unlock()

	for _, s := range targets {
		if s.filter.Matches(c) {
			s.onChange(c)
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context, table string, filter ports.Filter, onChange func(ports.Change)) (func(), error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.subs[table] == nil {
		f.subs[table] = map[int]subscriber{}
	}
	f.subs[table][id] = subscriber{filter: filter, onChange: onChange}
	f.mu.Unlock()

	var once sync.Once
	stopped := make(chan struct{})
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[table], id)
			f.mu.Unlock()
			close(stopped)
		})
	}
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				stop()
			case <-stopped:
			}
		}()
	}
	return stop, nil
}

// Subscribers número de suscripciones activas a table.
func (f *LocalFeed) Subscribers(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[table])
}
