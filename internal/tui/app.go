package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ifwatch/agent/internal/collector"
	"github.com/ifwatch/agent/internal/ipc"
)

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	if m.IsIPCMode() {
		return waitForIPCEvent(m.ipcEvents)
	}
	return tea.Batch(
		waitForEvent(m.events),
		func() tea.Msg {
			m.refreshAllStats()
			return TickMsg{}
		},
	)
}

// Run starts the TUI application in standalone mode, driven directly by a collector.
func Run(coll *collector.Collector, apiAddr string) error {
	model := NewModel(coll, apiAddr)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// RunWithIPC starts the TUI application connected to a daemon via the Unix socket.
func RunWithIPC(client *ipc.Client, apiAddr string) error {
	ifaces, err := client.GetInterfaces()
	if err != nil {
		return fmt.Errorf("failed to get interfaces from daemon: %w", err)
	}

	if err := client.Subscribe(); err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	model := NewModelWithIPC(client, ifaces, apiAddr)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
