package lspclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/codegraph-dev/engine/registry"
)

// Client drives one LSP server process for one language over stdio.
type Client struct {
	languageID registry.ID
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	logger     *logrus.Logger
	limiter    *rate.Limiter

	nextID atomic.Int64

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan response

	// admission serializes requests when the server did not declare
	// support for concurrent requests (spec §4.5). A client that does
	// declare support leaves this nil and requests are unbounded.
	admission chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// newClient starts the server process for command and performs the
// initialize/initialized handshake against rootURI.
func newClient(ctx context.Context, languageID registry.ID, command []string, rootURI string, logger *logrus.Logger, requestsPerSecond float64) (*Client, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("lspclient: no server command configured for %s", languageID)
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lspclient: stdin pipe for %s: %w", languageID, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lspclient: stdout pipe for %s: %w", languageID, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lspclient: starting server for %s: %w", languageID, err)
	}

	c := &Client{
		languageID: languageID,
		cmd:        cmd,
		stdin:      stdin,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		pending:    make(map[int64]chan response),
		done:       make(chan struct{}),
	}
	go c.readLoop(bufio.NewReader(stdout))

	result, err := c.initializeHandshake(ctx, rootURI)
	if err != nil {
		c.kill()
		return nil, err
	}
	if !referencesSupported(result) {
		c.admission = make(chan struct{}, 1)
		c.admission <- struct{}{}
	}
	return c, nil
}

func referencesSupported(result *initializeResult) bool {
	if result == nil {
		return false
	}
	raw := string(result.Capabilities.ReferencesProvider)
	return raw == "true" || (len(raw) > 0 && raw[0] == '{')
}

func (c *Client) readLoop(r *bufio.Reader) {
	defer close(c.done)
	for {
		frame, err := readFrame(r)
		if err != nil {
			c.logger.WithFields(logrus.Fields{"language": c.languageID, "error": err}).
				Debug("lspclient: read loop ended")
			return
		}

		var msg incoming
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.logger.WithField("language", c.languageID).Warn("lspclient: malformed frame, discarding")
			continue
		}

		if msg.ID != nil && msg.Method == "" {
			c.dispatch(*msg.ID, response{ID: *msg.ID, Result: msg.Result, Error: msg.Error})
			continue
		}

		// window/logMessage and textDocument/publishDiagnostics (and any
		// other server notification or server-initiated request) are read
		// and discarded (spec §4.5).
		c.logger.WithFields(logrus.Fields{"language": c.languageID, "method": msg.Method}).
			Trace("lspclient: discarding server notification")
	}
}

func (c *Client) dispatch(id int64, resp response) {
	c.pendingMu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if ok {
		ch <- resp
	}
}

// call issues a request and blocks for its response, honoring the rate
// limiter and (when the server lacks concurrent-request support) the
// per-client admission gate.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.admission != nil {
		select {
		case <-c.admission:
			defer func() { c.admission <- struct{}{} }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)
	ch := make(chan response, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("lspclient: marshaling params for %s: %w", method, err)
	}
	if err := c.send(request{JSONRPC: "2.0", ID: id, Method: method, Params: raw}); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("lspclient: %s: %w", method, resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.cancelRequest(id)
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, ctx.Err()
	}
}

func (c *Client) notify(method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("lspclient: marshaling notification params for %s: %w", method, err)
	}
	return c.send(notificationMessage{JSONRPC: "2.0", Method: method, Params: raw})
}

// cancelRequest sends $/cancelRequest for id when its context is
// canceled mid-flight (spec §4.5).
func (c *Client) cancelRequest(id int64) {
	_ = c.notify("$/cancelRequest", map[string]any{"id": id})
}

func (c *Client) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("lspclient: marshaling message: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeFrame(c.stdin, payload)
}

func (c *Client) initializeHandshake(ctx context.Context, rootURI string) (*initializeResult, error) {
	params := initializeParams{ProcessID: -1, RootURI: rootURI, RootPath: rootURI}
	raw, err := c.call(ctx, "initialize", params)
	if err != nil {
		return nil, fmt.Errorf("lspclient: initialize handshake for %s: %w", c.languageID, err)
	}
	var result initializeResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("lspclient: parsing initialize result for %s: %w", c.languageID, err)
		}
	}
	if err := c.notify("initialized", map[string]any{}); err != nil {
		return nil, fmt.Errorf("lspclient: sending initialized for %s: %w", c.languageID, err)
	}
	return &result, nil
}

// Shutdown performs the shutdown/exit lifecycle, waiting up to timeout
// for the process to exit before escalating to a kill.
func (c *Client) Shutdown(ctx context.Context, timeout time.Duration) {
	c.closeOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		_, _ = c.call(shutdownCtx, "shutdown", nil)
		_ = c.notify("exit", nil)

		waited := make(chan struct{})
		go func() {
			_ = c.cmd.Wait()
			close(waited)
		}()

		select {
		case <-waited:
		case <-time.After(timeout):
			c.kill()
		}
	})
}

func (c *Client) kill() {
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
}
