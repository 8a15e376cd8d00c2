package internal

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	runsBucket   = "runs"
	eventsBucket = "events"
)

// RunRecord summarizes one pipeline or sanitizer run.
type RunRecord struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Movies       int       `json:"movies"`
	Downloaded   int       `json:"downloaded"`
	Failed       int       `json:"failed"`
	Placeholders int       `json:"placeholders"`
	Backdrops    int       `json:"backdrops"`
	Aborted      bool      `json:"aborted"`
}

// HistoryEvent is one notable action within a run.
type HistoryEvent struct {
	RunID  string    `json:"runId"`
	Action string    `json:"action"`
	Title  string    `json:"title"`
	Detail string    `json:"detail"`
	Date   time.Time `json:"date"`
}

// History records runs and their events in the store.
type History struct {
	Store *Store
}

// NewRunRecord starts a record for a run beginning now.
func NewRunRecord(kind string) RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
}

func (h *History) SaveRun(run RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	if err := h.Store.Put(runsBucket, run.ID, data); err != nil {
		return CheckErrLog(WARN, "History", "save run", err)
	}
	return nil
}

func (h *History) AppendEvent(event HistoryEvent) error {
	if event.Date.IsZero() {
		event.Date = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.Store.Append(eventsBucket, data)
}

func (h *History) ListRuns() []RunRecord {
	raw, err := h.Store.Values(runsBucket)
	if err != nil {
		CheckErrLog(WARN, "History", "list runs", err)
		return nil
	}
	runs := make([]RunRecord, 0, len(raw))
	for _, data := range raw {
		var r RunRecord
		if json.Unmarshal(data, &r) == nil {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs
}

func (h *History) ListEvents() []HistoryEvent {
	raw, err := h.Store.List(eventsBucket)
	if err != nil {
		CheckErrLog(WARN, "History", "list events", err)
		return nil
	}
	events := make([]HistoryEvent, 0, len(raw))
	for _, data := range raw {
		var e HistoryEvent
		if json.Unmarshal(data, &e) == nil {
			events = append(events, e)
		}
	}
	return events
}
