package lspclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

var backoffBase = []time.Duration{100 * time.Millisecond, 400 * time.Millisecond, 1600 * time.Millisecond}

// DidOpen sends textDocument/didOpen, required before the first
// reference query for any file (spec §4.5).
func (c *Client) DidOpen(ctx context.Context, uri, languageID, text string) error {
	return c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

// References issues textDocument/references with includeDeclaration
// false, retrying up to three times with exponential, jittered backoff
// on transport errors or malformed responses (spec §4.5), grounded on
// the pack's generateContentWithRetry retry-loop shape
// (internal/llm/gemini_client.go) generalized from a fixed 429 check to
// any call error.
func (c *Client) References(ctx context.Context, uri string, pos Position) ([]Location, error) {
	params := referenceParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     pos,
		Context:      referenceContext{IncludeDeclaration: false},
	}

	var lastErr error
	for attempt := 0; attempt <= len(backoffBase); attempt++ {
		raw, err := c.call(ctx, "textDocument/references", params)
		if err == nil {
			var locations []Location
			if len(raw) > 0 {
				if unmarshalErr := json.Unmarshal(raw, &locations); unmarshalErr != nil {
					err = fmt.Errorf("malformed references response: %w", unmarshalErr)
				} else {
					return locations, nil
				}
			} else {
				return nil, nil
			}
		}
		lastErr = err

		if attempt == len(backoffBase) {
			break
		}
		delay := backoffBase[attempt] + time.Duration(rand.Int63n(int64(backoffBase[attempt]/4+1)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("lspclient: references request exhausted retries: %w", lastErr)
}
