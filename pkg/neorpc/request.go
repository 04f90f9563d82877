/*
Package neorpc contains the JSON-RPC 2.0 envelope used to talk to Neo nodes,
the node error codes and the parameter types shared by several methods.
*/
package neorpc

import "encoding/json"

// JSONRPCVersion is the only protocol version used.
const JSONRPCVersion = "2.0"

// Request is a JSON-RPC call. Neo nodes take positional parameters only, so
// Params is always an array (empty, never null).
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// Response is a raw JSON-RPC reply, either Error or Result is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *Error          `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// NewRequest creates a request for the method with the given parameters.
func NewRequest(id uint64, method string, params ...any) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{JSONRPC: JSONRPCVersion, Method: method, Params: params, ID: id}
}
