package service

import "encoding/json"

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSON-RPC error codes: the -326xx range is reserved by the protocol, the
// -320xx range carries this service's domain failures.
const (
	codeMethodNotFound       = -32601
	codeInvalidParams        = -32602
	codeInvalidConfiguration = -32001
	codeUpdateFailed         = -32002
	codeBuildFailed          = -32003
)

type setParams struct {
	Value string `json:"value"`
}

type dependenciesParams struct {
	Recursive bool `json:"recursive"`
}

type dependencyJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
