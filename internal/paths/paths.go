package paths

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Paths holds the resolved paths for config, data, and socket.
type Paths struct {
	ConfigFile string
	DataDir    string
	SocketPath string
}

// DefaultPaths returns the default paths based on current user.
// Root user: /etc/ifagent/, /var/lib/ifagent/, /var/run/ifagent/
// Non-root: ~/.ifagent/config/, ~/.ifagent/data/, ~/.ifagent/
func DefaultPaths() (*Paths, error) {
	if os.Geteuid() == 0 {
		return &Paths{
			ConfigFile: "/etc/ifagent/config.yaml",
			DataDir:    "/var/lib/ifagent",
			SocketPath: "/var/run/ifagent/ifagent.sock",
		}, nil
	}

	usr, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	baseDir := filepath.Join(usr.HomeDir, ".ifagent")
	return &Paths{
		ConfigFile: filepath.Join(baseDir, "config", "config.yaml"),
		DataDir:    filepath.Join(baseDir, "data"),
		SocketPath: filepath.Join(baseDir, "ifagent.sock"),
	}, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(p.ConfigFile),
		p.DataDir,
		filepath.Dir(p.SocketPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigExists checks if the config file exists.
func (p *Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile)
	return err == nil
}

// SocketExists checks if the socket file exists.
func (p *Paths) SocketExists() bool {
	_, err := os.Stat(p.SocketPath)
	return err == nil
}

// RemoveSocket removes the socket file if it exists.
func (p *Paths) RemoveSocket() error {
	if p.SocketExists() {
		return os.Remove(p.SocketPath)
	}
	return nil
}

// String returns a human-readable representation of the paths.
func (p *Paths) String() string {
	return fmt.Sprintf("Config: %s, Data: %s, Socket: %s", p.ConfigFile, p.DataDir, p.SocketPath)
}

// CreateDefaultConfig creates a default config file with sample content.
// Returns true if a new config was created, false if it already existed.
func (p *Paths) CreateDefaultConfig() (bool, error) {
	if p.ConfigExists() {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(p.ConfigFile), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# ifagent configuration
# Edit this file to configure which interfaces to track and how the
# scoring/hysteresis layer should behave.

server:
  address: ":8080"
  enable_tui: true

agent:
  interval: 1s
  interfaces:
    - eth0
    - wifi0
    - lte0
    - sat0

score:
  ewma_alpha: 0.25
  use_ewma: true
  w_tp: 0.3
  w_rtt: 0.3
  w_loss: 0.2
  w_jit: 0.2
  tp_max_mbps: 200
  rtt_min_ms: 10
  rtt_max_ms: 800
  loss_max_pct: 30
  jit_max_ms: 200
  enable_confidence_cap: true
  cap_confidence_threshold: 0.5
  cap_max_score_when_low_conf: 0.6
  min_confidence_for_promotion: 0.5

fsm:
  healthy_enter: 0.72
  healthy_exit: 0.66
  down_enter: 0.35
  down_exit: 0.45
  healthy_enter_n: 6
  healthy_exit_n: 6
  down_enter_n: 3
  down_exit_n: 5
  min_dwell_sec: 5

storage:
  data_dir: ./data
  retention: "1s:1d,1m:7d,1h:90d"
  aggregation: average
  xff: 0.5
`
	if err := os.WriteFile(p.ConfigFile, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
