package vectordb

import (
	"context"
	"fmt"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/cal-pilot/internal/embeddings"
)

const (
	eventsCollection   = "events"
	trainingCollection = "event_training"
)

// ChromemIndex implements EventIndex using chromem-go.
type ChromemIndex struct {
	db        *chromem.DB
	events    *chromem.Collection
	training  *chromem.Collection
	embedFunc chromem.EmbeddingFunc
}

// NewChromemIndex creates a new in-memory ChromemIndex.
func NewChromemIndex(embedder embeddings.Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	events, err := db.GetOrCreateCollection(eventsCollection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create events collection: %w", err)
	}
	training, err := db.GetOrCreateCollection(trainingCollection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create training collection: %w", err)
	}

	return &ChromemIndex{
		db:        db,
		events:    events,
		training:  training,
		embedFunc: ef,
	}, nil
}

func (s *ChromemIndex) IndexEvent(ctx context.Context, doc EventDoc) error {
	return s.events.AddDocuments(ctx, []chromem.Document{toChromemDoc(doc)}, 1)
}

func (s *ChromemIndex) SearchEvents(ctx context.Context, userID, title string, windowStart, windowEnd time.Time, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	count := s.events.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem metadata filters are equality-only, so the date window is
	// applied after the similarity query. Over-fetch to leave room for
	// out-of-window neighbors.
	fetch := limit * 4
	if fetch > count {
		fetch = count
	}

	where := map[string]string{"user_id": userID}
	results, err := s.events.Query(ctx, title, fetch, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]SearchHit, 0, limit)
	for _, r := range results {
		start, _ := time.Parse(time.RFC3339, r.Metadata["start_date"])
		if start.Before(windowStart) || start.After(windowEnd) {
			continue
		}
		hits = append(hits, SearchHit{
			EventID:    r.ID,
			Title:      r.Content,
			StartDate:  start,
			Similarity: r.Similarity,
		})
		if len(hits) == limit {
			break
		}
	}

	return hits, nil
}

func (s *ChromemIndex) DeleteEvent(ctx context.Context, eventID string) error {
	return s.events.Delete(ctx, nil, nil, eventID)
}

func (s *ChromemIndex) TrainEvent(ctx context.Context, doc EventDoc) error {
	return s.training.AddDocuments(ctx, []chromem.Document{toChromemDoc(doc)}, 1)
}

func (s *ChromemIndex) DeleteTraining(ctx context.Context, eventID string) error {
	if s.training.Count() == 0 {
		return nil
	}
	return s.training.Delete(ctx, nil, nil, eventID)
}

func (s *ChromemIndex) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemIndex) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(dir+"/chromem.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection references after import.
	events := s.db.GetCollection(eventsCollection, s.embedFunc)
	if events == nil {
		return fmt.Errorf("collection %q not found after import", eventsCollection)
	}
	s.events = events

	training := s.db.GetCollection(trainingCollection, s.embedFunc)
	if training == nil {
		// The training collection may be empty in older exports.
		training, err := s.db.GetOrCreateCollection(trainingCollection, nil, s.embedFunc)
		if err != nil {
			return fmt.Errorf("recreating training collection: %w", err)
		}
		s.training = training
		return nil
	}
	s.training = training
	return nil
}

func (s *ChromemIndex) Count() int {
	return s.events.Count()
}

func toChromemDoc(doc EventDoc) chromem.Document {
	return chromem.Document{
		ID:      doc.EventID,
		Content: doc.Title,
		Metadata: map[string]string{
			"user_id":    doc.UserID,
			"start_date": doc.StartDate.Format(time.RFC3339),
		},
	}
}
