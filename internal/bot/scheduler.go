// Package bot contains the control plane of the arbitrage bot: the command
// scheduler, the cycle orchestrator, and the operational metrics they share.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// Command drives a state transition or a stats request on the scheduler.
type Command int

const (
	CommandStart Command = iota
	CommandStop
	CommandPause
	CommandResume
	CommandGetStats
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandGetStats:
		return "get_stats"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// State is the scheduler's control state. Valid transitions are
// Stopped -> Running -> Paused -> Running -> Stopped; anything else is an
// idempotent no-op.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// EventType classifies scheduler events.
type EventType string

const (
	EventStarted          EventType = "started"
	EventStopped          EventType = "stopped"
	EventPaused           EventType = "paused"
	EventResumed          EventType = "resumed"
	EventOpportunityFound EventType = "opportunity_found"
	EventError            EventType = "error"
	EventStats            EventType = "stats"
)

// Event is a broadcast notification of a state change, an error, or a cycle
// outcome. Events are fanned out to every in-process subscriber and mirrored
// to the Redis signal bus for external observers.
type Event struct {
	Type        EventType `json:"type"`
	Message     string    `json:"message,omitempty"`
	Count       int       `json:"count,omitempty"`
	TotalProfit string    `json:"total_profit,omitempty"`
	Stats       string    `json:"stats,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventsChannel is the signal bus channel scheduler events are mirrored to.
const EventsChannel = "bot:events"

const (
	commandQueueSize    = 64
	subscriberQueueSize = 16

	heartbeatInterval = time.Minute
	heartbeatTimeout  = 5 * time.Minute
)

// Scheduler is the cooperative control loop of the bot: a many-producer
// command queue drained by a single consumer, plus an event broadcast to any
// number of observers. The orchestrator polls State at each cycle boundary;
// in-flight cycle work always completes before a transition takes effect.
type Scheduler struct {
	commands chan Command
	state    atomic.Int32

	mu   sync.Mutex
	subs []chan Event

	lastActivity atomic.Int64 // unix nanos

	statsFn func() string
	bus     domain.SignalBus
	logger  *slog.Logger
}

// NewScheduler creates a stopped scheduler. bus may be nil to disable the
// external event mirror.
func NewScheduler(bus domain.SignalBus, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		commands: make(chan Command, commandQueueSize),
		bus:      bus,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
	s.lastActivity.Store(time.Now().UnixNano())
	return s
}

// SetStatsFunc installs the provider for CommandGetStats responses. Must be
// called before Run.
func (s *Scheduler) SetStatsFunc(fn func() string) {
	s.statsFn = fn
}

// Send enqueues a command. It never blocks; a full queue is an error rather
// than a stall.
func (s *Scheduler) Send(cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("bot: command queue full, dropping %s", cmd)
	}
}

// Subscribe registers an in-process event observer. Events are dropped for
// subscribers that fall behind; the channel is closed when Run returns.
func (s *Scheduler) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberQueueSize)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// State returns the current control state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// MarkActivity feeds the heartbeat. The orchestrator calls it at every cycle
// boundary; silence beyond the heartbeat timeout raises an error event.
func (s *Scheduler) MarkActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Run drains commands in strict arrival order and checks liveness on a fixed
// heartbeat. It returns when ctx is cancelled, closing every subscriber
// channel on the way out.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started")
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	defer func() {
		s.mu.Lock()
		for _, ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.mu.Unlock()
		s.logger.Info("scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)

		case <-heartbeat.C:
			last := time.Unix(0, s.lastActivity.Load())
			if s.State() == StateRunning && time.Since(last) > heartbeatTimeout {
				s.logger.Warn("heartbeat timeout detected",
					slog.Time("last_activity", last))
				s.Emit(ctx, Event{
					Type:    EventError,
					Message: "bot heartbeat timeout",
				})
			}
		}
	}
}

// handleCommand applies the state machine. Invalid transitions are logged
// no-ops, never errors.
func (s *Scheduler) handleCommand(ctx context.Context, cmd Command) {
	s.logger.Debug("received command", slog.String("command", cmd.String()))

	switch cmd {
	case CommandStart:
		if st := s.State(); st == StateStopped || st == StatePaused {
			s.state.Store(int32(StateRunning))
			s.MarkActivity()
			s.Emit(ctx, Event{Type: EventStarted})
			s.logger.Info("bot started")
		} else {
			s.logger.Warn("cannot start bot, already running")
		}

	case CommandStop:
		if s.State() != StateStopped {
			s.state.Store(int32(StateStopped))
			s.Emit(ctx, Event{Type: EventStopped})
			s.logger.Info("bot stopped")
		}

	case CommandPause:
		if s.State() == StateRunning {
			s.state.Store(int32(StatePaused))
			s.Emit(ctx, Event{Type: EventPaused})
			s.logger.Info("bot paused")
		}

	case CommandResume:
		if s.State() == StatePaused {
			s.state.Store(int32(StateRunning))
			s.MarkActivity()
			s.Emit(ctx, Event{Type: EventResumed})
			s.logger.Info("bot resumed")
		}

	case CommandGetStats:
		stats := "bot state: " + s.State().String()
		if s.statsFn != nil {
			stats = s.statsFn()
		}
		s.Emit(ctx, Event{Type: EventStats, Stats: stats})
	}
}

// Emit timestamps an event and broadcasts it to every subscriber and, best
// effort, to the signal bus.
func (s *Scheduler) Emit(ctx context.Context, ev Event) {
	ev.Timestamp = time.Now().UTC()

	s.mu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropping event for slow subscriber",
				slog.String("type", string(ev.Type)))
		}
	}
	s.mu.Unlock()

	if s.bus != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("marshal event", slog.String("error", err.Error()))
			return
		}
		if err := s.bus.Publish(ctx, EventsChannel, payload); err != nil {
			s.logger.Warn("publish event to signal bus",
				slog.String("error", err.Error()))
		}
	}
}
