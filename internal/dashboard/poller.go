// internal/dashboard/poller.go
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
)

// Poller periodically re-fetches the experiment list while any experiment
// is still active. It stops itself once nothing is active and its ticker
// is released when the consuming view is torn down.
type Poller struct {
	lister   Lister
	interval time.Duration
	onUpdate func([]evalapi.Experiment)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPoller creates a poller that delivers each fetched list to onUpdate.
func NewPoller(lister Lister, interval time.Duration, onUpdate func([]evalapi.Experiment)) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		lister:   lister,
		interval: interval,
		onUpdate: onUpdate,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling. It returns immediately; polling runs until Stop is
// called, the context is cancelled, or no experiment remains active.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			experiments, err := p.lister.ListExperiments(ctx)
			if err != nil {
				logging.LogEvent("experiment poll failed: %v", err)
				continue
			}
			if p.onUpdate != nil {
				p.onUpdate(experiments)
			}
			if !anyActive(experiments) {
				logging.LogEvent("no active experiments, stopping poll")
				return
			}
		}
	}
}

// Stop tears the poller down. Safe to call multiple times and after the
// poller already stopped itself.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Wait blocks until the polling goroutine has exited.
func (p *Poller) Wait() {
	<-p.done
}

func anyActive(experiments []evalapi.Experiment) bool {
	for _, exp := range experiments {
		if exp.Active() {
			return true
		}
	}
	return false
}
