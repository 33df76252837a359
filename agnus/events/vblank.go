// Package events provides the vertical blank signal the engine loop
// synchronises on.
package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/valerio/go-agnus/agnus/timing"
)

// Source delivers vertical blanks.
type Source interface {
	// Wait blocks until the next vertical blank or until ctx is done.
	Wait(ctx context.Context) error
	// Count returns the number of vertical blanks so far.
	Count() uint64
}

// VBlank raises a vertical blank once per frame from its own goroutine,
// paced by a limiter. The goroutine only counts and signals.
type VBlank struct {
	limiter timing.Limiter
	count   atomic.Uint64
	signal  chan struct{}

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewVBlank(l timing.Limiter) *VBlank {
	return &VBlank{
		limiter: l,
		signal:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// Start launches the interrupt goroutine. It runs until Stop is called or
// ctx is done.
func (v *VBlank) Start(ctx context.Context) {
	v.limiter.Reset()
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-v.stop:
				return
			default:
			}
			v.limiter.WaitForNextFrame()
			v.count.Add(1)
			// a frame that is still running keeps the pending signal
			select {
			case v.signal <- struct{}{}:
			default:
			}
		}
	}()
}

// Stop ends the interrupt goroutine and waits for it to exit.
func (v *VBlank) Stop() {
	v.once.Do(func() { close(v.stop) })
	v.wg.Wait()
}

func (v *VBlank) Wait(ctx context.Context) error {
	select {
	case <-v.signal:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *VBlank) Count() uint64 {
	return v.count.Load()
}

// Immediate is a Source for headless runs: every Wait is a vertical blank.
type Immediate struct {
	count atomic.Uint64
}

func (i *Immediate) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.count.Add(1)
	return nil
}

func (i *Immediate) Count() uint64 {
	return i.count.Load()
}
