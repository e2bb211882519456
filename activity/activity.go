// ABOUTME: In-memory activity timeline for CRM changes
// ABOUTME: Defines activity entries, field-level change detection and a bounded recent-activity log
package activity

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Verb represents the action performed on an object.
type Verb string

const (
	VerbCreated      Verb = "created"
	VerbUpdated      Verb = "updated"
	VerbDeleted      Verb = "deleted"
	VerbCompleted    Verb = "completed"
	VerbRescheduled  Verb = "rescheduled"
	VerbDismissed    Verb = "dismissed"
	VerbRestored     Verb = "restored"
	VerbSwitchedView Verb = "switched_view"
	VerbSignedIn     Verb = "signed_in"
)

// Change is the before and after value of one field.
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Entry is one item in the timeline.
type Entry struct {
	ID       string            `json:"id"`
	ActorID  string            `json:"actorId,omitempty"`
	Verb     Verb              `json:"verb"`
	Kind     string            `json:"objectKind"`
	ObjectID string            `json:"objectId,omitempty"`
	Summary  string            `json:"summary"`
	At       time.Time         `json:"at"`
	Changes  map[string]Change `json:"changes,omitempty"`
}

// NewEntry creates an entry with a fresh id.
func NewEntry(actorID string, verb Verb, kind, objectID, summary string, at time.Time) Entry {
	return Entry{
		ID:       uuid.New().String(),
		ActorID:  actorID,
		Verb:     verb,
		Kind:     kind,
		ObjectID: objectID,
		Summary:  summary,
		At:       at,
	}
}

// Diff compares two values field by field through their JSON form and
// returns the fields whose value changed. Values that fail to marshal
// produce no changes.
func Diff(before, after any) map[string]Change {
	oldMap, err1 := asMap(before)
	newMap, err2 := asMap(after)
	if err1 != nil || err2 != nil {
		return nil
	}

	changes := make(map[string]Change)
	for key, newVal := range newMap {
		oldVal, exists := oldMap[key]
		if !exists || !jsonEqual(oldVal, newVal) {
			changes[key] = Change{Before: oldVal, After: newVal}
		}
	}
	for key, oldVal := range oldMap {
		if _, exists := newMap[key]; !exists {
			changes[key] = Change{Before: oldVal}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

func asMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func jsonEqual(a, b any) bool {
	aJSON, err1 := json.Marshal(a)
	bJSON, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(aJSON) == string(bJSON)
}

// DefaultCapacity bounds a Log created with a non-positive capacity.
const DefaultCapacity = 100

// Log keeps the most recent entries in memory. It is never persisted.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Record appends entries, evicting the oldest once the log is full.
func (l *Log) Record(entries ...Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entries...)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = slices.Delete(l.entries, 0, over)
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		e := l.entries[i]
		e.Changes = maps.Clone(e.Changes)
		out = append(out, e)
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
