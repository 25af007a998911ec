package vectordb

import (
	"context"
	"math"
	"testing"
	"time"
)

// mockEmbedder returns deterministic embeddings based on text content.
// It produces a simple hash-based vector for reproducible tests.
type mockEmbedder struct {
	dims int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// deterministicVector produces a normalized vector from text. Similar
// texts produce similar vectors because shared characters contribute to
// the same positions.
func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	return idx
}

func TestSearchEventsWindowFiltering(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	docs := []EventDoc{
		{EventID: "ev-in", UserID: "u1", Title: "weekly planning meeting", StartDate: now.AddDate(0, 0, 3)},
		{EventID: "ev-out", UserID: "u1", Title: "weekly planning meeting", StartDate: now.AddDate(0, 2, 0)},
		{EventID: "ev-other", UserID: "u2", Title: "weekly planning meeting", StartDate: now.AddDate(0, 0, 3)},
	}
	for _, d := range docs {
		if err := idx.IndexEvent(ctx, d); err != nil {
			t.Fatalf("IndexEvent(%s): %v", d.EventID, err)
		}
	}

	hits, err := idx.SearchEvents(ctx, "u1", "planning meeting", now, now.AddDate(0, 0, 28), 5)
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1 (window and user filtering)", len(hits))
	}
	if hits[0].EventID != "ev-in" {
		t.Errorf("top hit = %s, want ev-in", hits[0].EventID)
	}
}

func TestSearchEventsEmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.SearchEvents(context.Background(), "u1", "anything",
		time.Now(), time.Now().AddDate(0, 1, 0), 5)
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits from empty index, want 0", len(hits))
	}
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	doc := EventDoc{EventID: "ev1", UserID: "u1", Title: "dentist", StartDate: time.Now()}
	if err := idx.IndexEvent(ctx, doc); err != nil {
		t.Fatalf("IndexEvent: %v", err)
	}
	if idx.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", idx.Count())
	}

	if err := idx.DeleteEvent(ctx, "ev1"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("Count() = %d after delete, want 0", idx.Count())
	}
}

func TestTrainingCollectionIndependent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	doc := EventDoc{EventID: "ev1", UserID: "u1", Title: "standup", StartDate: time.Now()}
	if err := idx.TrainEvent(ctx, doc); err != nil {
		t.Fatalf("TrainEvent: %v", err)
	}

	// Training documents must not appear as searchable events.
	if idx.Count() != 0 {
		t.Errorf("Count() = %d, want 0 (training is a separate collection)", idx.Count())
	}

	if err := idx.DeleteTraining(ctx, "ev1"); err != nil {
		t.Fatalf("DeleteTraining: %v", err)
	}

	// Deleting training for an id that was never trained is a no-op.
	if err := idx.DeleteTraining(ctx, "ev-missing"); err != nil {
		t.Fatalf("DeleteTraining on missing id: %v", err)
	}
}
