// Command ifagent runs the per-host network-interface health agent: it
// scores each tracked interface's recent samples, classifies it into a
// hysteresis-gated health status, and exposes that state over an HTTP/
// WebSocket API, a terminal dashboard, or both.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
