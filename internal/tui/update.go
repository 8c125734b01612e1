package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ifwatch/agent/internal/collector"
	"github.com/ifwatch/agent/internal/ipc"
)

// Message types
type (
	// EventMsg is sent when a snapshot or transition arrives from the collector
	EventMsg collector.Event

	// IPCEventMsg is sent when an event is relayed over the IPC socket
	IPCEventMsg ipc.EventData

	// TickMsg requests a stats refresh; Init sends it once at startup
	TickMsg struct{}

	// ErrMsg is sent when an error occurs
	ErrMsg struct{ Err error }
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case EventMsg:
		m.applyEvent(collector.Event(msg))
		return m, waitForEvent(m.events)

	case IPCEventMsg:
		m.applyIPCEvent(ipc.EventData(msg))
		return m, waitForIPCEvent(m.ipcEvents)

	case TickMsg:
		m.refreshAllStats()
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case "down", "j":
		if m.selectedIdx < len(m.interfaces)-1 {
			m.selectedIdx++
		}

	case "home":
		m.selectedIdx = 0

	case "end":
		m.selectedIdx = len(m.interfaces) - 1

	case "r":
		m.refreshAllStats()
	}

	return m, nil
}

// waitForEvent creates a command that waits for a collector event
func waitForEvent(ch <-chan collector.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return ErrMsg{Err: nil} // Channel closed
		}
		return EventMsg(ev)
	}
}

// waitForIPCEvent creates a command that waits for an event relayed over IPC
func waitForIPCEvent(ch <-chan ipc.EventData) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return ErrMsg{Err: nil} // Channel closed
		}
		return IPCEventMsg(ev)
	}
}
