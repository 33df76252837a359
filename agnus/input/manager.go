// Package input turns backend key events into actions. Player controls are
// latched per frame so stage code can poll them; engine actions dispatch
// to callbacks after debouncing.
package input

import (
	"time"

	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time

	held    map[action.Action]bool
	pressed map[action.Action]bool

	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		held:          make(map[action.Action]bool),
		pressed:       make(map[action.Action]bool),
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// player controls are latched, never debounced
	if act.IsPlayer() {
		switch evt {
		case event.Press:
			if !m.held[act] {
				m.pressed[act] = true
			}
			m.held[act] = true
		case event.Hold:
			m.held[act] = true
		case event.Release:
			m.held[act] = false
		}
		m.dispatch(act, evt)
		return
	}

	if evt == event.Press || evt == event.Release {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if last, ok := m.lastTriggered[act][evt]; ok && now.Sub(last) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}
	if evt == event.Press {
		m.pressed[act] = true
	}
	m.dispatch(act, evt)
}

func (m *Manager) dispatch(act action.Action, evt event.Type) {
	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// WasActionPressed reports whether act was pressed since the last EndFrame.
func (m *Manager) WasActionPressed(act action.Action) bool {
	return m.pressed[act]
}

// IsActionHeld reports whether a player control is currently down.
func (m *Manager) IsActionHeld(act action.Action) bool {
	return m.held[act]
}

// EndFrame forgets the presses of the frame that just finished. Terminals
// deliver no release events, so backends without them call ReleaseAll
// as well.
func (m *Manager) EndFrame() {
	clear(m.pressed)
}

// ReleaseAll drops every held player control.
func (m *Manager) ReleaseAll() {
	clear(m.held)
}
