package internal

import (
	"sync"
	"testing"
)

// fakeRunner implements CommandRunner for tests and records every call.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	run   func(name string, args []string) (string, string, error)
}

func (f *fakeRunner) Run(name string, args []string) (string, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.run != nil {
		return f.run(name, args)
	}
	return "", "", nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func withFakeRunner(t *testing.T, f *fakeRunner) {
	t.Helper()
	old := commandRunner
	commandRunner = f
	t.Cleanup(func() { commandRunner = old })
}

func withZeroBackoff(t *testing.T) {
	t.Helper()
	old := downloadBackoff
	downloadBackoff = 0
	t.Cleanup(func() { downloadBackoff = old })
}
