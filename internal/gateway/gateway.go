package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"studiodesk/internal/metrics"
	"studiodesk/internal/models"
)

// pushTimeout bounds a single fire-and-forget push toward the upstream API
const pushTimeout = 15 * time.Second

// Gateway is the HTTP client through which the store reads and writes
// server-held data. Mutations are pushed optimistically: local state is
// authoritative for the session and a failed push is recorded and logged,
// never rolled back. Retries are not implemented anywhere.
type Gateway struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter

	mu         sync.RWMutex
	syncStates map[int64]models.SyncState
}

// New creates a gateway for the given API root. An empty baseURL disables
// remote sync entirely.
func New(baseURL, token string, rps float64) *Gateway {
	if rps <= 0 {
		rps = 10
	}
	return &Gateway{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps*2)),
		syncStates: make(map[int64]models.SyncState),
	}
}

// Enabled reports whether an upstream API is configured
func (g *Gateway) Enabled() bool {
	return g.baseURL != ""
}

// SyncState returns the recorded propagation state of one client record.
// Records never pushed report the empty state.
func (g *Gateway) SyncState(id int64) models.SyncState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.syncStates[id]
}

// SyncStates returns a snapshot of all recorded states
func (g *Gateway) SyncStates() map[int64]models.SyncState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[int64]models.SyncState, len(g.syncStates))
	for id, st := range g.syncStates {
		out[id] = st
	}
	return out
}

func (g *Gateway) setSyncState(id int64, st models.SyncState) {
	g.mu.Lock()
	g.syncStates[id] = st
	g.mu.Unlock()
}

// do performs one request against the API root with the bearer token
// attached, honoring the outbound rate limit.
func (g *Gateway) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("remote API not configured")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, truncate(data, 200))
	}

	return data, nil
}

// decodeList tolerates both response shapes the upstream is known to use:
// a bare JSON array or an object wrapping it under "data".
func decodeList(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("failed to decode list response: %w", err)
	}
	if wrapper.Data == nil {
		return fmt.Errorf("response has neither array nor data field")
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("failed to decode wrapped list: %w", err)
	}
	return nil
}

// FetchClients reads the full client collection from the upstream API
func (g *Gateway) FetchClients(ctx context.Context) ([]models.Client, error) {
	data, err := g.do(ctx, http.MethodGet, "/clients", nil)
	if err != nil {
		return nil, err
	}
	var clients []models.Client
	if err := decodeList(data, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// FetchProjects reads the full project collection from the upstream API
func (g *Gateway) FetchProjects(ctx context.Context) ([]models.Project, error) {
	data, err := g.do(ctx, http.MethodGet, "/projects", nil)
	if err != nil {
		return nil, err
	}
	var projects []models.Project
	if err := decodeList(data, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FetchTasks reads the full task collection from the upstream API
func (g *Gateway) FetchTasks(ctx context.Context) ([]models.Task, error) {
	data, err := g.do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := decodeList(data, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// PushClientCreate propagates a locally created client in the background.
// The local mutation has already been applied and stands regardless of the
// outcome.
func (g *Gateway) PushClientCreate(client models.Client) {
	g.push(client.ID, func(ctx context.Context) error {
		_, err := g.do(ctx, http.MethodPost, "/clients", client)
		return err
	})
}

// PushClientUpdate propagates a local edit in the background
func (g *Gateway) PushClientUpdate(client models.Client) {
	g.push(client.ID, func(ctx context.Context) error {
		_, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/clients/%d", client.ID), client)
		return err
	})
}

// PushClientDelete propagates a local delete in the background
func (g *Gateway) PushClientDelete(id int64) {
	g.push(id, func(ctx context.Context) error {
		_, err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/clients/%d", id), nil)
		return err
	})
}

func (g *Gateway) push(id int64, fn func(context.Context) error) {
	if !g.Enabled() {
		return
	}

	g.setSyncState(id, models.SyncPending)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			g.setSyncState(id, models.SyncFailed)
			metrics.RemoteSyncFailures.Inc()
			log.Printf("⚠️  [GATEWAY] Push for client %d failed: %v (local state stands)", id, err)
			return
		}
		g.setSyncState(id, models.SyncSynced)
	}()
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
