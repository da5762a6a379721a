package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcHandler func(method string, params []json.RawMessage) (any, *rpcError)

// fakeRPC is a JSON-RPC 2.0 endpoint over HTTP that supports batches and records calls.
type fakeRPC struct {
	*httptest.Server
	mu      sync.Mutex
	methods []string
	paths   []string
}

func newFakeRPC(t *testing.T, handler rpcHandler) *fakeRPC {
	t.Helper()
	f := &fakeRPC{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
			return
		}
		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()

		answer := func(req rpcRequest) rpcResponse {
			f.mu.Lock()
			f.methods = append(f.methods, req.Method)
			f.mu.Unlock()
			result, rpcErr := handler(req.Method, req.Params)
			return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
		}

		w.Header().Set("Content-Type", "application/json")
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []rpcRequest
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				t.Errorf("decode batch: %v", err)
				return
			}
			out := make([]rpcResponse, len(batch))
			for i, req := range batch {
				out[i] = answer(req)
			}
			json.NewEncoder(w).Encode(out)
			return
		}

		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		json.NewEncoder(w).Encode(answer(req))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRPC) calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.methods {
		if m == method {
			n++
		}
	}
	return n
}
