package tui

import (
	"github.com/ifwatch/agent/internal/collector"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/ipc"
	"github.com/ifwatch/agent/internal/storage"
)

// maxTransitionLog bounds how many transitions are kept for the scrolling log.
const maxTransitionLog = 50

// Model holds all application state.
type Model struct {
	// Data
	interfaces  []InterfaceState
	transitions []healthcore.TransitionEvent

	selectedIdx int

	// Dependencies - either collector (standalone) or ipcClient (daemon mode)
	collector *collector.Collector
	ipcClient *ipc.Client
	events    <-chan collector.Event
	ipcEvents <-chan ipc.EventData

	// UI state
	width  int
	height int
	ready  bool

	// API address for display
	apiAddr string

	// Error message
	err error
}

// InterfaceState holds display state for a single interface.
type InterfaceState struct {
	Name     string
	Snapshot *healthcore.InterfaceSnapshot
	Stats    *storage.Stats
	History  []float64 // Last N score_used samples for the sparkline
}

// NewModel creates a new Model driven directly by a collector.
func NewModel(coll *collector.Collector, apiAddr string) Model {
	names := coll.GetInterfaces()
	interfaces := make([]InterfaceState, len(names))
	for i, name := range names {
		interfaces[i] = InterfaceState{
			Name:    name,
			History: make([]float64, 0, 100),
		}
	}

	return Model{
		interfaces: interfaces,
		collector:  coll,
		events:     coll.Subscribe(),
		apiAddr:    apiAddr,
	}
}

// NewModelWithIPC creates a new Model connected to a daemon via IPC.
func NewModelWithIPC(client *ipc.Client, ifaceNames []string, apiAddr string) Model {
	interfaces := make([]InterfaceState, len(ifaceNames))
	for i, name := range ifaceNames {
		interfaces[i] = InterfaceState{
			Name:    name,
			History: make([]float64, 0, 100),
		}
	}

	return Model{
		interfaces: interfaces,
		ipcClient:  client,
		ipcEvents:  client.Events(),
		apiAddr:    apiAddr,
	}
}

// IsIPCMode returns true if the model is connected via IPC.
func (m Model) IsIPCMode() bool {
	return m.ipcClient != nil
}

// SelectedInterface returns the currently selected interface's state.
func (m Model) SelectedInterface() *InterfaceState {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.interfaces) {
		return &m.interfaces[m.selectedIdx]
	}
	return nil
}

func (m *Model) indexOf(iface string) int {
	for i := range m.interfaces {
		if m.interfaces[i].Name == iface {
			return i
		}
	}
	return -1
}

// applyEvent folds a collector event into interface state and the
// transition log.
func (m *Model) applyEvent(ev collector.Event) {
	switch {
	case ev.Snapshot != nil:
		i := m.indexOf(ev.Snapshot.Iface)
		if i < 0 {
			return
		}
		m.interfaces[i].Snapshot = ev.Snapshot
		m.interfaces[i].History = append(m.interfaces[i].History, ev.Snapshot.ScoreUsed)
		if len(m.interfaces[i].History) > 100 {
			m.interfaces[i].History = m.interfaces[i].History[1:]
		}
		if m.collector != nil {
			m.interfaces[i].Stats = m.collector.GetStats(ev.Snapshot.Iface)
		}

	case ev.Transition != nil:
		m.pushTransition(*ev.Transition)
	}
}

// applyIPCEvent mirrors applyEvent for events relayed over the IPC socket.
func (m *Model) applyIPCEvent(ev ipc.EventData) {
	switch {
	case ev.Snapshot != nil:
		i := m.indexOf(ev.Snapshot.Iface)
		if i < 0 {
			return
		}
		m.interfaces[i].Snapshot = ev.Snapshot
		m.interfaces[i].History = append(m.interfaces[i].History, ev.Snapshot.ScoreUsed)
		if len(m.interfaces[i].History) > 100 {
			m.interfaces[i].History = m.interfaces[i].History[1:]
		}

	case ev.Transition != nil:
		m.pushTransition(*ev.Transition)
	}
}

func (m *Model) pushTransition(ev healthcore.TransitionEvent) {
	m.transitions = append(m.transitions, ev)
	if len(m.transitions) > maxTransitionLog {
		m.transitions = m.transitions[len(m.transitions)-maxTransitionLog:]
	}
}

// refreshAllStats refreshes stats for all interfaces from the collector.
// No-op in IPC mode, where state only arrives via relayed events.
func (m *Model) refreshAllStats() {
	if m.IsIPCMode() {
		return
	}
	for i := range m.interfaces {
		m.interfaces[i].Stats = m.collector.GetStats(m.interfaces[i].Name)
		m.interfaces[i].History = m.collector.GetHistory(m.interfaces[i].Name, 100)
	}
	m.transitions = m.collector.RecentTransitions()
	if len(m.transitions) > maxTransitionLog {
		m.transitions = m.transitions[len(m.transitions)-maxTransitionLog:]
	}
}
