package ha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.jonnrb.io/natmon/log"
)

const DefaultInterval = 10 * time.Second

type Ticker interface {
	Tick(ctx context.Context) (Result, error)
}

// Runs Ticker immediately and then Interval after each tick finishes. Ticks
// never overlap and a failed tick never stops the loop.
type Scheduler struct {
	Ticker   Ticker
	Interval time.Duration

	// May be nil.
	Observer Observer

	// Only used to keep the mastership notice from repeating every tick.
	wasMaster bool
}

// Runs until ctx is cancelled and returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	t := time.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		s.tick(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		t.Reset(interval)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if so, ok := s.Observer.(StartObserver); ok {
		so.ObserveStart()
	}
	res, err := s.safeTick(ctx)

	if err != nil {
		var te *TickError
		if errors.As(err, &te) {
			logger.Errorf("tick failed (%s): %v", te.Kind, te.Err)
		} else {
			logger.Errorf("tick failed: %v", err)
		}
	} else {
		isMaster := res.Outcome.IsMaster()
		if isMaster && !s.wasMaster {
			logger.Infof("this node (%s) is master", res.Local)
		}
		s.wasMaster = isMaster
		log.V(1).Infof("ha: tick outcome %s in %v", res.Outcome, res.Duration)
	}

	if s.Observer != nil {
		s.Observer.Observe(res, err)
	}
}

func (s *Scheduler) safeTick(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TickError{KindPanic, fmt.Errorf("%v", r)}
		}
	}()
	return s.Ticker.Tick(ctx)
}
