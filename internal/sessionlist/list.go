// Package sessionlist keeps the in-memory mirror of a session collection.
// All changes go through Reconcile or Merge so there is one merge rule.
package sessionlist

import (
	"sort"
	"sync"

	"hornethelper/internal/model"
)

// Reconcile returns the local view after receiving a full-collection snapshot.
// The snapshot decides which sessions exist. For a session present in both, the local copy
// is kept only when its UpdatedAt is strictly newer, so a snapshot read before a confirmed
// mutation cannot roll it back. Results are normalized and ordered newest first, and
// applying the same snapshot twice yields the same result.
func Reconcile(local, snapshot []*model.Session) []*model.Session {
	known := make(map[string]*model.Session, len(local))
	for _, s := range local {
		if s != nil {
			known[s.ID] = s
		}
	}

	out := make([]*model.Session, 0, len(snapshot))
	seen := make(map[string]bool, len(snapshot))
	for _, s := range snapshot {
		if s == nil || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		if l, ok := known[s.ID]; ok && l.UpdatedAt.After(s.UpdatedAt) {
			s = l
		}
		c := s.Clone()
		c.Normalize()
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

// Merge replaces (or inserts) one confirmed session in the local view
func Merge(local []*model.Session, confirmed *model.Session) []*model.Session {
	out := make([]*model.Session, 0, len(local)+1)
	for _, s := range local {
		if s.ID != confirmed.ID {
			out = append(out, s)
		}
	}
	c := confirmed.Clone()
	c.Normalize()
	out = append(out, c)
	sortNewestFirst(out)
	return out
}

// Drop removes a session from the local view
func Drop(local []*model.Session, id string) []*model.Session {
	out := make([]*model.Session, 0, len(local))
	for _, s := range local {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func sortNewestFirst(sessions []*model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
}

// List is a concurrency-safe session list for one kind
type List struct {
	mu       sync.RWMutex
	sessions []*model.Session
}

// New creates an empty list
func New() *List {
	return &List{sessions: []*model.Session{}}
}

// Reconcile applies a full snapshot
func (l *List) Reconcile(snapshot []*model.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = Reconcile(l.sessions, snapshot)
}

// Merge applies one confirmed session
func (l *List) Merge(confirmed *model.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = Merge(l.sessions, confirmed)
}

// Drop removes one session
func (l *List) Drop(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = Drop(l.sessions, id)
}

// Get returns a copy of one session, or nil
func (l *List) Get(id string) *model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sessions {
		if s.ID == id {
			return s.Clone()
		}
	}
	return nil
}

// Snapshot returns a copy of the whole list, newest first
func (l *List) Snapshot() []*model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*model.Session, len(l.sessions))
	for i, s := range l.sessions {
		out[i] = s.Clone()
	}
	return out
}
