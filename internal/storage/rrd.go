package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/rrd"
)

// RRDStorage implements persistent storage of interface health using RRD
// files, one per interface, with two data sources: score and status.
type RRDStorage struct {
	dataDir     string
	step        time.Duration
	heartbeat   time.Duration
	xff         float64
	aggregation string // "AVERAGE", "MIN", "MAX", "LAST"

	rras []rraConfig

	updaters map[string]*rrd.Updater
	mu       sync.RWMutex
}

// rraConfig defines an RRA (Round Robin Archive) configuration.
type rraConfig struct {
	steps int // number of primary data points per consolidated data point
	rows  int // number of rows (consolidated data points) in the archive
}

// NewRRDStorage creates a new RRD storage instance.
func NewRRDStorage(dataDir string, step time.Duration, retentionStr string, xff float64, aggregation string) (*RRDStorage, error) {
	rras, err := parseRRAs(retentionStr, step)
	if err != nil {
		return nil, fmt.Errorf("failed to parse retentions: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	aggUpper := strings.ToUpper(aggregation)
	if aggUpper == "" {
		aggUpper = "AVERAGE"
	}

	return &RRDStorage{
		dataDir:     dataDir,
		step:        step,
		heartbeat:   step * 3,
		xff:         xff,
		aggregation: aggUpper,
		rras:        rras,
		updaters:    make(map[string]*rrd.Updater),
	}, nil
}

// Write persists score_used and the numeric status code for an interface.
func (s *RRDStorage) Write(iface string, timestamp time.Time, score float64, status int) error {
	filename := s.getFilename(iface)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if err := s.createRRD(filename); err != nil {
			return fmt.Errorf("failed to create RRD file: %w", err)
		}
	}

	s.mu.Lock()
	u, exists := s.updaters[iface]
	if !exists {
		u = rrd.NewUpdater(filename)
		s.updaters[iface] = u
	}
	s.mu.Unlock()

	return u.Update(timestamp, score, float64(status))
}

// Fetch retrieves data points for an interface within a time range.
func (s *RRDStorage) Fetch(iface string, from, to time.Time) ([]DataPoint, error) {
	filename := s.getFilename(iface)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return []DataPoint{}, nil
	}

	duration := to.Sub(from)
	step := s.calculateStep(duration)

	fetchRes, err := rrd.Fetch(filename, s.aggregation, from, to, step)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer fetchRes.FreeValues()

	rowCount := fetchRes.RowCnt
	dsCount := len(fetchRes.DsNames)

	if dsCount < 2 {
		return nil, fmt.Errorf("unexpected data source count: %d (expected 2)", dsCount)
	}

	points := make([]DataPoint, 0, rowCount)
	for row := 0; row < rowCount; row++ {
		ts := fetchRes.Start.Add(time.Duration(row) * fetchRes.Step)

		score := fetchRes.ValueAt(0, row)  // DS 0 = score
		status := fetchRes.ValueAt(1, row) // DS 1 = status

		points = append(points, DataPoint{Timestamp: ts, Score: score, Status: status})
	}

	return points, nil
}

// calculateStep returns the appropriate step duration based on query
// duration, matching the step to the correct RRA archive.
func (s *RRDStorage) calculateStep(duration time.Duration) time.Duration {
	switch {
	case duration <= 24*time.Hour:
		return s.step
	case duration <= 7*24*time.Hour:
		return time.Minute
	default:
		return time.Hour
	}
}

// Close closes all open RRD updaters.
func (s *RRDStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updaters = make(map[string]*rrd.Updater)
	return nil
}

// createRRD creates a new RRD file with score and status data sources.
func (s *RRDStorage) createRRD(filename string) error {
	stepSecs := uint(s.step.Seconds())
	heartbeatSecs := int(s.heartbeat.Seconds())

	c := rrd.NewCreator(filename, time.Now().Add(-s.step), stepSecs)

	for _, rra := range s.rras {
		c.RRA(s.aggregation, s.xff, rra.steps, rra.rows)
	}

	// DS 0: score_used, GAUGE in [0,1]
	c.DS("score", "GAUGE", heartbeatSecs, 0, 1)
	// DS 1: status code, GAUGE in [0,2] (Healthy=0, Degraded=1, Down=2)
	c.DS("status", "GAUGE", heartbeatSecs, 0, 2)

	return c.Create(false)
}

// unsafeFilenameChars matches characters that are unsafe for filenames on
// various filesystems.
var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// getFilename returns the RRD file path for an interface.
func (s *RRDStorage) getFilename(iface string) string {
	safe := strings.ReplaceAll(iface, " ", "_")
	safe = unsafeFilenameChars.ReplaceAllString(safe, "_")
	safe = strings.ToLower(safe)
	safe = regexp.MustCompile(`_+`).ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if len(safe) > 200 {
		safe = safe[:200]
	}
	if safe == "" {
		safe = "unnamed"
	}
	return filepath.Join(s.dataDir, safe+".rrd")
}

// parseRRAs parses a retention string like "10s:1d,1m:7d,1h:90d" into RRA
// configurations.
func parseRRAs(retentionStr string, baseStep time.Duration) ([]rraConfig, error) {
	parts := strings.Split(retentionStr, ",")
	rras := make([]rraConfig, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		subparts := strings.Split(part, ":")
		if len(subparts) != 2 {
			return nil, fmt.Errorf("invalid retention format: %s", part)
		}

		resolution, err := parseDuration(subparts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid resolution in %s: %w", part, err)
		}

		duration, err := parseDuration(subparts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid duration in %s: %w", part, err)
		}

		steps := int(resolution / baseStep)
		if steps < 1 {
			steps = 1
		}

		rows := int(duration / resolution)
		if rows < 1 {
			rows = 1
		}

		rras = append(rras, rraConfig{steps: steps, rows: rows})
	}

	if len(rras) == 0 {
		return nil, fmt.Errorf("no valid retentions found")
	}

	return rras, nil
}

// parseDuration parses duration strings like "10s", "1m", "1h", "1d", "7d",
// "90d" (time.ParseDuration has no day unit).
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty duration")
	}

	if strings.HasSuffix(s, "d") {
		numStr := s[:len(s)-1]
		var days int
		if _, err := fmt.Sscanf(numStr, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid day duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
