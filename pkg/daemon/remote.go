package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tactical-os/tos/pkg/models"
)

// RemoteClient implements Client by calling the brain's HTTP API over a
// Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
}

// NewRemoteClient creates a new RemoteClient connected to the brain socket.
func NewRemoteClient(socketPath string) (*RemoteClient, error) {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		DisableKeepAlives: false,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}

	return &RemoteClient{
		httpClient: client,
		socketPath: socketPath,
	}, nil
}

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

func (c *RemoteClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach brain: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("brain returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Snapshot returns the brain state.
func (c *RemoteClient) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.getJSON(ctx, "/api/state", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Render returns the brain's latest frame markup.
func (c *RemoteClient) Render(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/render", nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	return string(body), nil
}

// Dispatch posts a request line to the brain.
func (c *RemoteClient) Dispatch(ctx context.Context, request string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/dispatch", strings.NewReader(request), "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimRight(string(body), "\n"), nil
}

// Journal lists journaled dispatches.
func (c *RemoteClient) Journal(ctx context.Context, filter models.Filter) ([]models.JournalEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.StartTime != nil {
		q.Set("since", filter.StartTime.Format(time.RFC3339))
	}
	for _, s := range filter.Sources {
		q.Add("source", s)
	}
	if filter.FailedOnly {
		q.Set("failed", "true")
	}

	path := "/api/journal"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var entries []models.JournalEntry
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RequestPortal asks the brain for a portal token.
func (c *RemoteClient) RequestPortal(ctx context.Context, sector int) (*models.PortalGrant, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/portal?sector="+strconv.Itoa(sector), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var grant models.PortalGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("failed to decode portal grant: %w", err)
	}
	return &grant, nil
}

// RevokePortal withdraws an unused portal token.
func (c *RemoteClient) RevokePortal(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/portal?token="+url.QueryEscape(token), nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// IsRunning returns true if the brain is available and responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamState subscribes to state updates via Server-Sent Events (SSE).
func (c *RemoteClient) StreamState(ctx context.Context) (<-chan models.StateUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Use a separate client with no timeout for streaming
	streamTransport := &http.Transport{
		DialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
	}
	streamClient := &http.Client{
		Transport: streamTransport,
		Timeout:   0,
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	ch := make(chan models.StateUpdate, 10)

	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		// Snapshots at the raw buffer level can be large.
		buf := make([]byte, 0, 256*1024)
		scanner.Buffer(buf, 8*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()

			if strings.HasPrefix(line, ":") || line == "" {
				continue
			}

			if strings.HasPrefix(line, "data: ") {
				var update models.StateUpdate
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
					continue // Skip malformed data
				}

				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ensure RemoteClient implements Client interface.
var _ Client = (*RemoteClient)(nil)
