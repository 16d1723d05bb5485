package nl2sql

import (
	"context"
	"sync"
)

type fakeCompleter struct {
	mu       sync.Mutex
	content  string
	err      error
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.content, f.err
}
