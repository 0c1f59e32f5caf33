// Package dispatch runs event handlers one at a time on a single goroutine.
//
// Producers (edge watchers, timers) Post events from their own goroutines;
// handlers only ever run on the goroutine calling Run, each to completion
// before the next starts, so the state they own needs no locking.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Kind int

const (
	ButtonEdge Kind = iota + 1
	TimerTick
)

func (k Kind) String() string {
	switch k {
	case ButtonEdge:
		return "button-edge"
	case TimerTick:
		return "timer-tick"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Event struct {
	Kind   Kind
	Source string
	// Level is the logical button state after a ButtonEdge: true once
	// pressed, which is a rising edge on a pulled-down button.
	Level bool
	Time  time.Time
}

// Rising reports a ButtonEdge into the pressed state.
func (e Event) Rising() bool {
	return e.Kind == ButtonEdge && e.Level
}

type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

type subscription struct {
	name     string
	h        Handler
	disabled bool
}

// DefaultDepth is the number of events that can wait for a busy handler.
const DefaultDepth = 16

type Loop struct {
	log    zerolog.Logger
	events chan Event

	mu   sync.Mutex
	subs map[Kind][]*subscription

	stop     chan struct{}
	stopOnce sync.Once
}

func NewLoop(depth int, log zerolog.Logger) *Loop {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Loop{
		log:    log,
		events: make(chan Event, depth),
		subs:   make(map[Kind][]*subscription),
		stop:   make(chan struct{}),
	}
}

// Subscribe registers h for events of kind. Handlers for the same kind run
// in subscription order.
func (l *Loop) Subscribe(kind Kind, name string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs[kind] = append(l.subs[kind], &subscription{name: name, h: h})
}

// Post queues ev, blocking while the queue is full. It returns false once
// the loop has stopped.
func (l *Loop) Post(ev Event) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.events <- ev:
		return true
	case <-l.stop:
		return false
	}
}

// Run dispatches events until ctx is done. Events still queued at that point
// are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stop) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.events:
			l.dispatch(ctx, ev)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, ev Event) {
	l.mu.Lock()
	subs := append([]*subscription{}, l.subs[ev.Kind]...)
	l.mu.Unlock()

	for _, s := range subs {
		if s.disabled {
			continue
		}
		if err := l.call(ctx, s, ev); err != nil {
			s.disabled = true
			l.log.Error().Err(err).Str("handler", s.name).Stringer("kind", ev.Kind).
				Msg("handler failed; it will not be called again")
		}
	}
}

func (l *Loop) call(ctx context.Context, s *subscription, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.h.Handle(ctx, ev)
}
