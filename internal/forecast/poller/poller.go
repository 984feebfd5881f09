// Package poller implements the client-side polling coordinator for
// asynchronous forecast jobs. Each session owns a single goroutine that
// submits the job, then checks status at a fixed interval until the job
// reaches a terminal state, the wall-clock bound expires, or the session is
// cancelled. Checks never overlap within a session, and cancellation is
// synchronous: once Cancel returns, no further status check runs.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aircast/aircast/pkg/forecast"
)

// Default timing for the polling loop.
const (
	// DefaultInterval is the delay between consecutive status checks.
	DefaultInterval = 5 * time.Second

	// DefaultMaxWait bounds the total time a session may poll before it
	// fails. The upstream protocol has no bound of its own; without one a
	// lost job would be polled forever.
	DefaultMaxWait = 10 * time.Minute
)

// State is the lifecycle state of a polling session.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateSucceeded
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has finished on its own.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Client abstracts the forecast gateway for the coordinator.
type Client interface {
	Submit(ctx context.Context, req forecast.Request) (forecast.JobHandle, error)
	Check(ctx context.Context, handle forecast.JobHandle) (forecast.StatusReport, error)
}

// Snapshot is a point-in-time view of a session for display.
type Snapshot struct {
	State State

	// Handle is the active job handle while polling, zero otherwise.
	Handle forecast.JobHandle

	// Result is set once the session succeeded.
	Result *forecast.Result

	// Reason describes the failure once the session failed.
	Reason string
}

// Config holds configuration for a Coordinator.
type Config struct {
	// Client performs submissions and status checks (required).
	Client Client

	// Interval between status checks (default DefaultInterval). The first
	// check always fires immediately after submission.
	Interval time.Duration

	// MaxWait bounds total polling time per session (default DefaultMaxWait).
	MaxWait time.Duration

	Logger zerolog.Logger
}

// Coordinator runs at most one polling session at a time. Starting a new
// session cancels the previous one first, so at most one job handle is ever
// active.
type Coordinator struct {
	client   Client
	interval time.Duration
	maxWait  time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	current *Session
}

// NewCoordinator creates a polling coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &Coordinator{
		client:   cfg.Client,
		interval: interval,
		maxWait:  maxWait,
		logger:   cfg.Logger,
	}
}

// Start validates the request and begins a new polling session. Any session
// already in flight is cancelled before the new one starts. The returned
// session exposes its progress via Snapshot and completion via Done.
func (c *Coordinator) Start(ctx context.Context, req forecast.Request) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	prev := c.current
	c.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		client:   c.client,
		interval: c.interval,
		maxWait:  c.maxWait,
		logger:   c.logger,
		ctx:      sessionCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
		state:    StateSubmitting,
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	go s.run(req)
	return s, nil
}

// Cancel stops the active session, if any. It returns only after the
// session's polling goroutine has exited.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// Status returns a snapshot of the active session, or an idle snapshot when
// no session has been started.
func (c *Coordinator) Status() Snapshot {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return Snapshot{State: StateIdle}
	}
	return s.Snapshot()
}

// Session is one submit-and-poll lifecycle for a single forecast request.
type Session struct {
	client   Client
	interval time.Duration
	maxWait  time.Duration
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	state  State
	handle forecast.JobHandle
	result *forecast.Result
	reason string
}

// Snapshot returns the session's current state for display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:  s.state,
		Handle: s.handle,
		Result: s.result,
		Reason: s.reason,
	}
}

// Done is closed when the session's polling goroutine has exited, whether by
// terminal state or cancellation.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancel stops the session and blocks until no further status check can run.
// A cancelled session returns to idle; it never transitions to a terminal
// state afterwards.
func (s *Session) Cancel() {
	s.cancel()
	<-s.done
}

// run drives the session state machine. It is the only goroutine issuing
// status checks for this session, which makes checks single-flight by
// construction.
func (s *Session) run(req forecast.Request) {
	defer close(s.done)
	defer s.cancel()

	handle, err := s.client.Submit(s.ctx, req)
	if err != nil {
		if s.ctx.Err() != nil {
			s.toIdle()
			return
		}
		s.logger.Error().Err(err).Msg("forecast submission failed")
		s.fail("request failed")
		return
	}

	s.mu.Lock()
	s.state = StatePolling
	s.handle = handle
	s.mu.Unlock()

	s.logger.Debug().
		Str("request_id", handle.RequestID).
		Dur("interval", s.interval).
		Msg("polling forecast job")

	deadline := time.NewTimer(s.maxWait)
	defer deadline.Stop()

	// Zero delay before the first check, then fixed interval.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.toIdle()
			return
		case <-deadline.C:
			s.fail("timed out waiting for forecast")
			return
		case <-timer.C:
		}

		report, err := s.client.Check(s.ctx, handle)
		if s.ctx.Err() != nil {
			// A cancelled session must not observe this check's outcome.
			s.toIdle()
			return
		}
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("request_id", handle.RequestID).
				Msg("status check failed")
			s.fail("request failed")
			return
		}

		for _, w := range report.Warnings {
			s.logger.Warn().Str("request_id", handle.RequestID).Msg(w)
		}

		switch report.Status {
		case forecast.StatusReady:
			s.succeed(report.Result)
			return
		case forecast.StatusFailed:
			reason := report.Reason
			if reason == "" {
				reason = "forecast job failed"
			}
			s.fail(reason)
			return
		case forecast.StatusPending:
			timer.Reset(s.interval)
		}
	}
}

// toIdle records a cancellation: the handle is released and the session ends
// without a terminal state.
func (s *Session) toIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.handle = forecast.JobHandle{}
}

func (s *Session) succeed(result *forecast.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateSucceeded
	s.result = result
	s.handle = forecast.JobHandle{}
}

func (s *Session) fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.reason = reason
	s.handle = forecast.JobHandle{}
}

// ErrNoSession is returned by Wait when no session is active.
var ErrNoSession = errors.New("no active polling session")

// Wait blocks until the active session completes or ctx is cancelled, then
// returns its final snapshot.
func (c *Coordinator) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil {
		return Snapshot{State: StateIdle}, ErrNoSession
	}
	select {
	case <-s.done:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}
