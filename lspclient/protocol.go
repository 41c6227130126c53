package lspclient

import "encoding/json"

// request/response/notification mirror the JSON-RPC 2.0 envelope, using
// raw, typed Params/Result via json.RawMessage instead of
// map[string]interface{}, since LSP payloads are nested structs.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type notificationMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// incoming is used to sniff whether a frame is a response (has "id")
// or a server-initiated notification/request (no "id", or an "id" with
// a "method" — e.g. workspace/configuration).
type incoming struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	Params json.RawMessage `json:"params"`
}

// Position is a zero-based line/character position (LSP spec).
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a start/end Position pair.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a file URI plus a Range within it, the shape returned by
// textDocument/references and textDocument/definition.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type referenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type referenceParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      referenceContext       `json:"context"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type initializeParams struct {
	ProcessID int            `json:"processId"`
	RootURI   string         `json:"rootUri"`
	RootPath  string         `json:"rootPath,omitempty"`
	Capabilities clientCapabilities `json:"capabilities"`
}

type clientCapabilities struct{}

// initializeResult is only read for the fields the pool cares about;
// unknown fields are ignored by encoding/json.
type initializeResult struct {
	Capabilities struct {
		ReferencesProvider json.RawMessage `json:"referencesProvider"`
	} `json:"capabilities"`
}
