package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifwatch/agent/internal/ipc"
	"github.com/ifwatch/agent/internal/tui"
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach the terminal dashboard to a running \"serve --daemon\" process",
	Long: `attach connects to a daemonized "ifagent serve --daemon" over its
Unix-socket control channel and renders the same live dashboard from the
relayed snapshot and transition stream, without sharing memory with the
daemon process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, p, err := resolveConfig()
		if err != nil {
			return err
		}

		if !p.SocketExists() {
			return fmt.Errorf("no daemon socket found at %s: is \"ifagent serve --daemon\" running?", p.SocketPath)
		}

		client, err := ipc.Connect(p.SocketPath)
		if err != nil {
			return fmt.Errorf("connect to daemon: %w", err)
		}
		defer client.Close()

		return tui.RunWithIPC(client, cfg.Server.Address)
	},
}
