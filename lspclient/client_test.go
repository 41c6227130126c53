package lspclient

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeServer is a minimal in-process LSP peer driven over pipes, used to
// exercise Client's request/response machinery without spawning a real
// language server (none are installed in this environment).
type fakeServer struct {
	t        *testing.T
	in       *bufio.Reader
	out      io.Writer
	outMu    sync.Mutex
	handlers map[string]func(id int64, params json.RawMessage)
}

func newFakeServer(t *testing.T, in io.Reader, out io.Writer) *fakeServer {
	return &fakeServer{t: t, in: bufio.NewReader(in), out: out, handlers: make(map[string]func(int64, json.RawMessage))}
}

func (f *fakeServer) reply(id int64, result any) {
	raw, err := json.Marshal(result)
	require.NoError(f.t, err)
	f.send(response{JSONRPC: "2.0", ID: id, Result: raw})
}

func (f *fakeServer) send(msg any) {
	payload, err := json.Marshal(msg)
	require.NoError(f.t, err)
	f.outMu.Lock()
	defer f.outMu.Unlock()
	require.NoError(f.t, writeFrame(f.out, payload))
}

// run loops reading frames until the peer closes its write end (exit) or
// the reader returns an error.
func (f *fakeServer) run() {
	for {
		frame, err := readFrame(f.in)
		if err != nil {
			return
		}
		var msg incoming
		if err := json.Unmarshal(frame, &msg); err != nil {
			continue
		}
		if msg.ID == nil {
			continue
		}
		handler, ok := f.handlers[msg.Method]
		if !ok {
			continue
		}
		handler(*msg.ID, msg.Params)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeServer) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	server := newFakeServer(t, reqR, respW)

	c := &Client{
		languageID: "go",
		stdin:      reqW,
		logger:     logrus.New(),
		limiter:    rate.NewLimiter(rate.Inf, 1),
		pending:    make(map[int64]chan response),
		done:       make(chan struct{}),
	}
	go c.readLoop(bufio.NewReader(respR))
	go server.run()

	return c, server
}

func TestClientCallReturnsServerResult(t *testing.T) {
	c, server := newTestClient(t)
	server.handlers["textDocument/references"] = func(id int64, _ json.RawMessage) {
		server.reply(id, []Location{{URI: "file:///a.go", Range: Range{}}})
	}

	locations, err := c.References(context.Background(), "file:///a.go", Position{Line: 1, Character: 2})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	require.Equal(t, "file:///a.go", locations[0].URI)
}

func TestClientCallSurfacesServerError(t *testing.T) {
	c, server := newTestClient(t)
	server.handlers["textDocument/references"] = func(id int64, _ json.RawMessage) {
		server.send(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: -32000, Message: "boom"}})
	}

	_, err := c.call(context.Background(), "textDocument/references", map[string]any{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestReferencesRetriesOnTransientErrorThenSucceeds(t *testing.T) {
	c, server := newTestClient(t)

	var attempt int
	var mu sync.Mutex
	server.handlers["textDocument/references"] = func(id int64, _ json.RawMessage) {
		mu.Lock()
		attempt++
		n := attempt
		mu.Unlock()
		if n == 1 {
			server.send(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: -32000, Message: "server busy"}})
			return
		}
		server.reply(id, []Location{{URI: "file:///b.go"}})
	}

	locations, err := c.References(context.Background(), "file:///b.go", Position{})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, attempt)
}

func TestReferencesEmptyResultReturnsNoError(t *testing.T) {
	c, server := newTestClient(t)
	server.handlers["textDocument/references"] = func(id int64, _ json.RawMessage) {
		server.send(response{JSONRPC: "2.0", ID: id, Result: nil})
	}

	locations, err := c.References(context.Background(), "file:///c.go", Position{})
	require.NoError(t, err)
	require.Empty(t, locations)
}

func TestCallCancelsOnContextDeadline(t *testing.T) {
	c, server := newTestClient(t)
	// Server never replies to this method; the call must time out via ctx.
	server.handlers["textDocument/references"] = func(int64, json.RawMessage) {}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.call(ctx, "textDocument/references", map[string]any{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDidOpenSendsNotificationWithoutWaitingForReply(t *testing.T) {
	c, _ := newTestClient(t)
	err := c.DidOpen(context.Background(), "file:///d.go", "go", "package main\n")
	require.NoError(t, err)
}

func TestReferencesSupportedDetectsBooleanAndObjectCapability(t *testing.T) {
	boolResult := &initializeResult{}
	boolResult.Capabilities.ReferencesProvider = json.RawMessage("true")
	require.True(t, referencesSupported(boolResult))

	objResult := &initializeResult{}
	objResult.Capabilities.ReferencesProvider = json.RawMessage(`{"workDoneProgress":true}`)
	require.True(t, referencesSupported(objResult))

	require.False(t, referencesSupported(nil))

	falseResult := &initializeResult{}
	falseResult.Capabilities.ReferencesProvider = json.RawMessage("false")
	require.False(t, referencesSupported(falseResult))
}
