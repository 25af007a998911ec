package vectordb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryIndex is an EventIndex that matches on lowercased title
// substrings instead of embeddings. It backs the offline REPL and
// tests, where hitting an embedding API is unwanted.
type MemoryIndex struct {
	mu       sync.Mutex
	docs     map[string]EventDoc
	training map[string]EventDoc
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs:     make(map[string]EventDoc),
		training: make(map[string]EventDoc),
	}
}

func (m *MemoryIndex) IndexEvent(ctx context.Context, doc EventDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.EventID] = doc
	return nil
}

func (m *MemoryIndex) SearchEvents(ctx context.Context, userID, title string, windowStart, windowEnd time.Time, limit int) ([]SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(title)
	var hits []SearchHit
	for _, doc := range m.docs {
		if doc.UserID != userID {
			continue
		}
		if doc.StartDate.Before(windowStart) || doc.StartDate.After(windowEnd) {
			continue
		}
		haystack := strings.ToLower(doc.Title)
		if !strings.Contains(haystack, needle) && !strings.Contains(needle, haystack) {
			continue
		}
		hits = append(hits, SearchHit{EventID: doc.EventID, Title: doc.Title, StartDate: doc.StartDate, Similarity: 1})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].EventID < hits[j].EventID })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *MemoryIndex) DeleteEvent(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, eventID)
	return nil
}

func (m *MemoryIndex) TrainEvent(ctx context.Context, doc EventDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training[doc.EventID] = doc
	return nil
}

func (m *MemoryIndex) DeleteTraining(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.training, eventID)
	return nil
}

func (m *MemoryIndex) Persist(ctx context.Context, dir string) error { return nil }

func (m *MemoryIndex) Load(ctx context.Context, dir string) error { return nil }

func (m *MemoryIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// HasTraining reports whether a training document exists for the event.
func (m *MemoryIndex) HasTraining(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.training[eventID]
	return ok
}
