package lspclient

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codegraph-dev/engine/registry"
)

// Config configures server startup per language. ServerCommand maps a
// language to its LSP server's argv (e.g. {"gopls"} or
// {"pylsp"}); a language with no entry is never started and is
// reported unavailable immediately.
type Config struct {
	ServerCommand     map[registry.ID][]string
	RootURI           string
	RequestsPerSecond float64
	ShutdownTimeout   time.Duration
	Logger            *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 20
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 3 * time.Second
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c
}

// Pool lazily starts and reuses one Client per language (spec §4.5).
// Servers must not share state across languages: each language gets an
// independent process and an independent Client.
type Pool struct {
	cfg Config

	mu          sync.Mutex
	clients     map[registry.ID]*Client
	unavailable map[registry.ID]bool
}

// NewPool builds a Pool from cfg.
func NewPool(cfg Config) *Pool {
	return &Pool{
		cfg:         cfg.withDefaults(),
		clients:     make(map[registry.ID]*Client),
		unavailable: make(map[registry.ID]bool),
	}
}

// Client returns the running Client for languageID, starting its
// server process and performing the initialize handshake on first
// demand. A server that fails to start marks the language Unavailable
// for the remainder of the pool's life; subsequent calls return the
// same error immediately without retrying the start.
func (p *Pool) Client(ctx context.Context, languageID registry.ID) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable[languageID] {
		return nil, errUnavailable{languageID: languageID}
	}
	if client, ok := p.clients[languageID]; ok {
		return client, nil
	}

	command := p.cfg.ServerCommand[languageID]
	client, err := newClient(ctx, languageID, command, p.cfg.RootURI, p.cfg.Logger, p.cfg.RequestsPerSecond)
	if err != nil {
		p.cfg.Logger.WithFields(logrus.Fields{"language": languageID, "error": err}).
			Warn("lspclient: server unavailable, degrading to hierarchy-only for this language")
		p.unavailable[languageID] = true
		return nil, errUnavailable{languageID: languageID, cause: err}
	}

	p.clients[languageID] = client
	return client, nil
}

// Unavailable reports whether languageID has already failed to start.
// Callers (the reference resolver) use this to skip a query cheaply and
// record an LSPUnavailable warning, rather than recalling Client and
// paying the error-formatting cost repeatedly.
func (p *Pool) Unavailable(languageID registry.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unavailable[languageID]
}

// Close shuts down every started client.
func (p *Pool) Close(ctx context.Context) {
	p.mu.Lock()
	clients := make([]*Client, 0, len(p.clients))
	for _, c := range p.clients {
		clients = append(clients, c)
	}
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			c.Shutdown(ctx, p.cfg.ShutdownTimeout)
		}(c)
	}
	wg.Wait()
}

type errUnavailable struct {
	languageID registry.ID
	cause      error
}

func (e errUnavailable) Error() string {
	if e.cause != nil {
		return "lspclient: " + string(e.languageID) + " unavailable: " + e.cause.Error()
	}
	return "lspclient: " + string(e.languageID) + " unavailable"
}

func (e errUnavailable) Unwrap() error { return e.cause }
