// Package automation drives the outbound messaging queue: one engine
// works through pending contacts, pacing sends with randomized delays
// and honoring pause/resume/stop controls at its polling points.
package automation

import "sync"

// State names the engine's lifecycle stage.
type State string

const (
	StateIdle              State = "idle"
	StateWaitingForLogin   State = "waiting-for-login"
	StateRunning           State = "running"
	StatePaused            State = "paused"
	StateWaitingForDelay   State = "waiting-for-delay"
	StateProcessingContact State = "processing-contact"
	StateCompleted         State = "completed"
	StateError             State = "error"
)

// pausable reports whether a pause request is honored in this state.
func (s State) pausable() bool {
	switch s {
	case StateRunning, StateWaitingForDelay, StateProcessingContact:
		return true
	}
	return false
}

// active reports whether the engine is mid-run in this state.
func (s State) active() bool {
	switch s {
	case StateWaitingForLogin, StateRunning, StatePaused, StateWaitingForDelay, StateProcessingContact:
		return true
	}
	return false
}

// stateMachine serializes state transitions. Invalid requests are
// ignored rather than erroring: controls arrive from a UI layer that
// may race the engine, and a stale pause or resume must be harmless.
type stateMachine struct {
	mu    sync.Mutex
	state State
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: StateIdle}
}

func (m *stateMachine) current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// set moves to the given working state unless a pause or stop request
// intervened. Pause wins over working-state updates so the engine
// cannot silently unpause itself; stop and error are terminal for the
// run and never overwritten by working states.
func (m *stateMachine) set(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StatePaused || m.state == StateIdle || m.state == StateError {
		return
	}
	m.state = s
}

// begin moves idle/completed/error into the starting state and reports
// whether the engine may launch. A start while already active is a no-op.
func (m *stateMachine) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.active() {
		return false
	}
	m.state = StateWaitingForLogin
	return true
}

// pause requests a pause; honored only from the working states.
func (m *stateMachine) pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.pausable() {
		return false
	}
	m.state = StatePaused
	return true
}

// resume returns to running; honored only from paused.
func (m *stateMachine) resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaused {
		return false
	}
	m.state = StateRunning
	return true
}

// stop aborts any active run back to idle.
func (m *stateMachine) stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.active() {
		return false
	}
	m.state = StateIdle
	return true
}

// finish marks the run's terminal outcome: completed, or error when the
// run aborted. A stop that already reset to idle is left alone.
func (m *stateMachine) finish(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle {
		return
	}
	m.state = s
}
