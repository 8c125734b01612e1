package main

import (
	"github.com/spf13/cobra"

	"github.com/ifwatch/agent/internal/logging"
)

var (
	configPath string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "ifagent",
	Short: "Per-host network-interface health agent",
	Long: `ifagent scores each tracked network interface from rolling-window
metrics, classifies it into healthy/degraded/down through a hysteresis
state machine, and serves the result over HTTP, WebSocket, and a
terminal dashboard.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logFormat == "json" {
			logging.SetFormat(logging.FormatJSON)
		} else {
			logging.SetFormat(logging.FormatText)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to the per-user/root location)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(benchCmd)
}
