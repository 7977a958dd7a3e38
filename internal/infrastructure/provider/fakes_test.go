package provider

import (
	"context"
	"sync"

	"github.com/kirillkom/mail-triage/internal/core/ports"
)

type fakeCompleter struct {
	mu      sync.Mutex
	out     string
	err     error
	calls   int
	lastSys string
	lastUsr string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSys = systemPrompt
	f.lastUsr = userPrompt
	return f.out, f.err
}

type fakeZeroShot struct {
	res      ports.ZeroShotResult
	err      error
	labels   []string
	template string
}

func (f *fakeZeroShot) ClassifyZeroShot(_ context.Context, _ string, labels []string, template string) (ports.ZeroShotResult, error) {
	f.labels = labels
	f.template = template
	return f.res, f.err
}
