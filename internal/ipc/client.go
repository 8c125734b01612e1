package ipc

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/storage"
)

// Client connects to the IPC server exposed by a running "serve --daemon".
type Client struct {
	conn    net.Conn
	encoder *json.Encoder
	scanner *bufio.Scanner

	eventCh chan EventData

	// Pending requests waiting for responses, keyed by request ID
	pending   map[string]chan Response
	pendingMu sync.Mutex

	ctx    chan struct{}
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Connect connects to the IPC server
func Connect(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	client := &Client{
		conn:    conn,
		encoder: json.NewEncoder(conn),
		scanner: bufio.NewScanner(conn),
		eventCh: make(chan EventData, 100),
		pending: make(map[string]chan Response),
		ctx:     make(chan struct{}),
	}

	client.scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	client.wg.Add(1)
	go client.readLoop()

	return client, nil
}

// readLoop reads responses from the server
func (c *Client) readLoop() {
	defer c.wg.Done()

	for c.scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
			continue
		}

		switch resp.Type {
		case MsgTypeEvent:
			if data, ok := resp.Data.(map[string]interface{}); ok {
				ev := parseEventData(data)
				select {
				case c.eventCh <- ev:
				default:
					// Channel full, skip
				}
			}
		default:
			if resp.ID != "" {
				c.pendingMu.Lock()
				ch, ok := c.pending[resp.ID]
				if ok {
					select {
					case ch <- resp:
					default:
					}
				}
				c.pendingMu.Unlock()
			}
		}
	}

	close(c.eventCh)
}

// parseEventData parses an event from a decoded JSON map. Snapshot and
// Transition round-trip through encoding/json's generic map decoding, so
// re-marshal/unmarshal into the concrete healthcore types rather than
// hand-walking every field.
func parseEventData(data map[string]interface{}) EventData {
	ev := EventData{}
	if t, ok := data["type"].(string); ok {
		ev.Type = t
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ev
	}
	var typed struct {
		Snapshot   *healthcore.InterfaceSnapshot `json:"snapshot"`
		Transition *healthcore.TransitionEvent   `json:"transition"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil {
		ev.Snapshot = typed.Snapshot
		ev.Transition = typed.Transition
	}
	return ev
}

// sendRequest sends a request and returns a channel to receive the response
func (c *Client) sendRequest(reqType string, data any) (chan Response, string, error) {
	reqID := generateRequestID()
	respCh := make(chan Response, 1)

	c.pendingMu.Lock()
	c.pending[reqID] = respCh
	c.pendingMu.Unlock()

	c.mu.Lock()
	err := c.encoder.Encode(Request{ID: reqID, Type: reqType, Data: data})
	c.mu.Unlock()

	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return nil, "", err
	}

	return respCh, reqID, nil
}

// cleanupRequest removes a pending request
func (c *Client) cleanupRequest(reqID string) {
	c.pendingMu.Lock()
	delete(c.pending, reqID)
	c.pendingMu.Unlock()
}

// Subscribe subscribes to snapshot/transition events
func (c *Client) Subscribe() error {
	respCh, reqID, err := c.sendRequest(MsgTypeSubscribe, nil)
	if err != nil {
		return err
	}
	defer c.cleanupRequest(reqID)

	select {
	case resp := <-respCh:
		if resp.Type == MsgTypeError {
			return fmt.Errorf("subscribe failed: %s", resp.Error)
		}
	case <-time.After(5 * time.Second):
		return fmt.Errorf("subscribe timeout")
	}

	return nil
}

// Events returns a channel for receiving snapshot/transition events
func (c *Client) Events() <-chan EventData {
	return c.eventCh
}

// GetInterfaces retrieves the daemon's configured interface names
func (c *Client) GetInterfaces() ([]string, error) {
	respCh, reqID, err := c.sendRequest(MsgTypeGetInterfaces, nil)
	if err != nil {
		return nil, err
	}
	defer c.cleanupRequest(reqID)

	select {
	case resp := <-respCh:
		if resp.Type == MsgTypeError {
			return nil, fmt.Errorf("get interfaces failed: %s", resp.Error)
		}
		if resp.Type == MsgTypeInterfaces {
			if data, ok := resp.Data.(map[string]interface{}); ok {
				if raw, ok := data["interfaces"].([]interface{}); ok {
					out := make([]string, 0, len(raw))
					for _, v := range raw {
						if s, ok := v.(string); ok {
							out = append(out, s)
						}
					}
					return out, nil
				}
			}
		}
		return nil, fmt.Errorf("unexpected response type: %s", resp.Type)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("get interfaces timeout")
	}
}

// GetStats retrieves statistics for an interface
func (c *Client) GetStats(iface string) (*storage.Stats, error) {
	respCh, reqID, err := c.sendRequest(MsgTypeGetStats, GetStatsRequest{Interface: iface})
	if err != nil {
		return nil, err
	}
	defer c.cleanupRequest(reqID)

	select {
	case resp := <-respCh:
		if resp.Type == MsgTypeError {
			return nil, fmt.Errorf("get stats failed: %s", resp.Error)
		}
		if resp.Type == MsgTypeStats {
			raw, err := json.Marshal(resp.Data)
			if err != nil {
				return nil, err
			}
			var sr StatsResponse
			if err := json.Unmarshal(raw, &sr); err != nil {
				return nil, err
			}
			return sr.Stats, nil
		}
		return nil, fmt.Errorf("unexpected response type: %s", resp.Type)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("get stats timeout")
	}
}

// GetHistory retrieves historical data for an interface
func (c *Client) GetHistory(iface string, from, to time.Time) ([]storage.DataPoint, error) {
	respCh, reqID, err := c.sendRequest(MsgTypeGetHistory, map[string]interface{}{
		"interface": iface,
		"from":      from.Format(time.RFC3339),
		"to":        to.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	defer c.cleanupRequest(reqID)

	select {
	case resp := <-respCh:
		if resp.Type == MsgTypeError {
			return nil, fmt.Errorf("get history failed: %s", resp.Error)
		}
		if resp.Type == MsgTypeHistory {
			if data, ok := resp.Data.(map[string]interface{}); ok {
				if pointsRaw, ok := data["data_points"].([]interface{}); ok {
					points := make([]storage.DataPoint, 0, len(pointsRaw))
					for _, p := range pointsRaw {
						if pmap, ok := p.(map[string]interface{}); ok {
							point := storage.DataPoint{}
							if ts, ok := pmap["timestamp"].(string); ok {
								point.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
							}
							if v, ok := pmap["score"].(float64); ok {
								point.Score = v
							} else {
								point.Score = math.NaN()
							}
							if v, ok := pmap["status"].(float64); ok {
								point.Status = v
							} else {
								point.Status = math.NaN()
							}
							points = append(points, point)
						}
					}
					return points, nil
				}
			}
		}
		return nil, fmt.Errorf("unexpected response type: %s", resp.Type)
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("get history timeout")
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.ctx)
	c.conn.Close()
	c.wg.Wait()

	return nil
}
