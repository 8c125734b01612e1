// Package collector drives a healthcore.Agent on a fixed tick, pulling
// metrics from per-interface Sources (synthetic scenario generators or real
// probes), persisting snapshots, and broadcasting snapshots and transitions
// to subscribers.
package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ifwatch/agent/internal/config"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/logging"
	"github.com/ifwatch/agent/internal/storage"
)

// Source supplies one interface's metrics for a given tick. It returns
// ok=false when no sample is available this tick (a dropped or missing
// reading), in which case the tick still advances the rolling window via
// NoteTime but ingests nothing.
type Source interface {
	Fetch(iface string, tick int64) (ts int64, m healthcore.Metrics, ok bool)
}

// Event is broadcast to subscribers: exactly one of Snapshot or Transition
// is populated, mirroring the two kinds of state the agent produces per tick.
type Event struct {
	Type       string                       `json:"type"` // "snapshot" or "transition"
	Snapshot   *healthcore.InterfaceSnapshot `json:"snapshot,omitempty"`
	Transition *healthcore.TransitionEvent   `json:"transition,omitempty"`
}

// Collector manages the agent's tick loop and broadcasts results.
type Collector struct {
	config  *config.Config
	agent   *healthcore.Agent
	sources map[string]Source
	storage storage.Storage
	memory  *storage.MemoryBuffer

	tick int64

	recentTransitions []healthcore.TransitionEvent
	transitionsMu     sync.RWMutex

	subscribers map[chan Event]struct{}
	subMu       sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCollector creates a new collector wired to one Source per configured
// interface. An interface with no matching source is still registered with
// the agent and simply never receives ingested samples.
func NewCollector(cfg *config.Config, agent *healthcore.Agent, sources map[string]Source, store storage.Storage, mem *storage.MemoryBuffer) *Collector {
	ctx, cancel := context.WithCancel(context.Background())

	for _, iface := range cfg.Agent.Interfaces {
		agent.EnsureInterface(iface)
	}

	return &Collector{
		config:      cfg,
		agent:       agent,
		sources:     sources,
		storage:     store,
		memory:      mem,
		subscribers: make(map[chan Event]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins the tick loop at the configured agent interval.
func (c *Collector) Start() {
	log.Printf("[Collector] Starting collection with interval %s", c.config.Agent.Interval)

	c.runTick()

	ticker := time.NewTicker(c.config.Agent.Interval)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-c.ctx.Done():
				log.Println("[Collector] Stopping collection")
				return
			case <-ticker.C:
				c.runTick()
			}
		}
	}()
}

// Stop stops the collector and waits for its goroutine to finish.
func (c *Collector) Stop() {
	c.cancel()
	c.wg.Wait()

	c.subMu.Lock()
	for ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, ch)
	}
	c.subMu.Unlock()

	log.Println("[Collector] Stopped")
}

// Subscribe returns a channel that receives snapshot and transition events.
func (c *Collector) Subscribe() <-chan Event {
	ch := make(chan Event, 100)

	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber.
func (c *Collector) Unsubscribe(ch <-chan Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for subCh := range c.subscribers {
		if subCh == ch {
			close(subCh)
			delete(c.subscribers, subCh)
			return
		}
	}
}

// GetStats returns current in-memory statistics for an interface.
func (c *Collector) GetStats(iface string) *storage.Stats {
	return c.memory.GetStats(iface)
}

// GetAllStats returns in-memory statistics for all interfaces.
func (c *Collector) GetAllStats() map[string]*storage.Stats {
	return c.memory.GetAllStats()
}

// GetHistory returns the last N score_used samples for an interface.
func (c *Collector) GetHistory(iface string, count int) []float64 {
	return c.memory.GetHistory(iface, count)
}

// GetInterfaces returns the configured interface names.
func (c *Collector) GetInterfaces() []string {
	return c.config.Agent.Interfaces
}

// FetchHistory retrieves historical data from persistent storage.
func (c *Collector) FetchHistory(iface string, from, to time.Time) ([]storage.DataPoint, error) {
	if c.storage == nil {
		return []storage.DataPoint{}, nil
	}
	return c.storage.Fetch(iface, from, to)
}

// Summary returns the ranked end-of-run summary from the agent.
func (c *Collector) Summary() []healthcore.RankedSummaryItem {
	return c.agent.SummaryRanked()
}

const maxRecentTransitions = 200

// RecentTransitions returns the most recent transitions observed, oldest
// first, bounded to maxRecentTransitions.
func (c *Collector) RecentTransitions() []healthcore.TransitionEvent {
	c.transitionsMu.RLock()
	defer c.transitionsMu.RUnlock()

	out := make([]healthcore.TransitionEvent, len(c.recentTransitions))
	copy(out, c.recentTransitions)
	return out
}

func (c *Collector) recordTransition(ev healthcore.TransitionEvent) {
	c.transitionsMu.Lock()
	defer c.transitionsMu.Unlock()

	c.recentTransitions = append(c.recentTransitions, ev)
	if len(c.recentTransitions) > maxRecentTransitions {
		c.recentTransitions = c.recentTransitions[len(c.recentTransitions)-maxRecentTransitions:]
	}
}

// runTick advances the agent by one tick: note_time, ingest each source's
// sample (if any), record_tick, then drain and fan out results. This
// ordering matches the agent's documented per-tick contract.
func (c *Collector) runTick() {
	now := time.Now()
	c.agent.NoteTime(c.tick)

	for iface, src := range c.sources {
		ts, m, ok := src.Fetch(iface, c.tick)
		if !ok {
			continue
		}
		c.agent.Ingest(iface, ts, m)
	}

	c.agent.RecordTick()
	c.tick++

	for _, snap := range c.agent.Snapshots() {
		c.memory.Write(snap.Iface, now, snap.ScoreUsed)
		if c.storage != nil {
			if err := c.storage.Write(snap.Iface, now, snap.ScoreUsed, int(snap.Status)); err != nil {
				log.Printf("[Collector] Failed to write to storage for %s: %v", snap.Iface, err)
			}
		}
		snap := snap
		c.broadcast(Event{Type: "snapshot", Snapshot: &snap})
	}

	for _, ev := range c.agent.DrainTransitions() {
		ev := ev
		logging.Transition(ev.Iface, ev.From.String(), ev.To.String(), ev.Reason)
		c.recordTransition(ev)
		c.broadcast(Event{Type: "transition", Transition: &ev})
	}
}

// broadcast sends an event to all subscribers.
func (c *Collector) broadcast(event Event) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
