package internal

import (
	"errors"
	"sync"
)

// ErrTooManyFailures trips the pipeline circuit breaker.
var ErrTooManyFailures = errors.New("too many download failures; check network or YouTube availability")

// KnownFailures is the persisted set of movie ids whose trailer acquisition
// permanently failed. Multiple download workers add to it concurrently.
type KnownFailures struct {
	mu   sync.Mutex
	path string
	ids  map[int]bool
}

func LoadKnownFailures(path string) *KnownFailures {
	kf := &KnownFailures{path: path, ids: make(map[int]bool)}
	var stored []int
	if LoadJSONCache(path, "Failures", &stored) {
		for _, id := range stored {
			kf.ids[id] = true
		}
		UmmLog(INFO, "Failures", "Loaded %d known failing movie IDs.", len(kf.ids))
	}
	return kf
}

func (kf *KnownFailures) Contains(id int) bool {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	return kf.ids[id]
}

func (kf *KnownFailures) Add(id int) {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	kf.ids[id] = true
}

func (kf *KnownFailures) Len() int {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	return len(kf.ids)
}

// IDs returns a snapshot of the set.
func (kf *KnownFailures) IDs() []int {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	ids := make([]int, 0, len(kf.ids))
	for id := range kf.ids {
		ids = append(ids, id)
	}
	return ids
}

// Save persists the set once after the pipeline drains. An empty set is not
// written.
func (kf *KnownFailures) Save() error {
	ids := kf.IDs()
	if len(ids) == 0 {
		return nil
	}
	if err := WriteJSONFile(kf.path, ids); err != nil {
		return CheckErrLog(ERROR, "Failures", "Failed to write known failures cache", err)
	}
	UmmLog(INFO, "Failures", "Updated known failures cache with %d movie IDs.", len(ids))
	return nil
}

// Clear empties the set and deletes the cache file.
func (kf *KnownFailures) Clear() {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	kf.ids = make(map[int]bool)
	removeFile(kf.path)
}

// DefaultFailureLimit is how many terminal download failures a run
// tolerates before aborting.
const DefaultFailureLimit = 5

// FailureBudget is the process-wide circuit breaker: once limit terminal
// download failures accumulate, Add returns ErrTooManyFailures and the
// pipeline stops dispatching new work. Increment-and-check is atomic so the
// budget cannot be exceeded under concurrent increments.
type FailureBudget struct {
	mu       sync.Mutex
	count    int
	limit    int
	disabled bool
}

func NewFailureBudget(limit int, disabled bool) *FailureBudget {
	return &FailureBudget{limit: limit, disabled: disabled}
}

func (b *FailureBudget) Add() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	if !b.disabled && b.count >= b.limit {
		return ErrTooManyFailures
	}
	return nil
}

func (b *FailureBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
