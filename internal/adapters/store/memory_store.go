package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/mikey/news-credibility/internal/core"
	"github.com/mikey/news-credibility/internal/utils"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the core.Repository interface
type MemoryStore struct {
	analyses map[string]core.AnalysisEntry
	feedback []core.FeedbackEntry
	training []analysis.TrainingRecord
	settings map[string]core.UserSettings
	mu       sync.RWMutex
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		analyses: make(map[string]core.AnalysisEntry),
		settings: make(map[string]core.UserSettings),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *MemoryStore) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// newestFirst orders by creation time descending, then id descending
func newestFirst(aTime, bTime time.Time, aID, bID string) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}

// SaveAnalysis inserts a history entry
func (s *MemoryStore) SaveAnalysis(ctx context.Context, entry *core.AnalysisEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.CreatedAt = s.stamp(entry.CreatedAt)
	stored := *entry
	stored.KeyFactors = append([]string(nil), entry.KeyFactors...)
	s.analyses[entry.ID] = stored
	return nil
}

// ListAnalyses returns a page of a user's history, newest first
func (s *MemoryStore) ListAnalyses(ctx context.Context, query core.HistoryQuery) (*core.HistoryPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []core.AnalysisEntry
	for _, entry := range s.analyses {
		if entry.UserID != query.UserID {
			continue
		}
		if query.Search != "" &&
			!utils.ContainsFold(entry.Title, query.Search) &&
			!utils.ContainsFold(entry.ArticleText, query.Search) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})

	page := &core.HistoryPage{Data: []core.AnalysisEntry{}, TotalCount: len(matched)}
	start, ok := query.Offset()
	if !ok || start >= len(matched) {
		return page, nil
	}
	end := start + min(query.Limit, len(matched)-start)
	page.Data = append(page.Data, matched[start:end]...)
	page.HasMore = len(matched) > end
	return page, nil
}

// DeleteAnalyses removes the given entries owned by userID
func (s *MemoryStore) DeleteAnalyses(ctx context.Context, userID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if entry, ok := s.analyses[id]; ok && entry.UserID == userID {
			delete(s.analyses, id)
			deleted++
		}
	}
	return deleted, nil
}

// SaveFeedback inserts a feedback row
func (s *MemoryStore) SaveFeedback(ctx context.Context, entry *core.FeedbackEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.CreatedAt = s.stamp(entry.CreatedAt)
	s.feedback = append(s.feedback, *entry)
	return nil
}

// RecentFeedback returns up to limit of a user's feedback rows, newest first
func (s *MemoryStore) RecentFeedback(ctx context.Context, userID string, limit int) ([]core.FeedbackEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []core.FeedbackEntry
	for _, entry := range s.feedback {
		if entry.UserID == userID {
			rows = append(rows, entry)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// SaveTrainingRecord inserts a training record
func (s *MemoryStore) SaveTrainingRecord(ctx context.Context, record *analysis.TrainingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.CreatedAt = s.stamp(record.CreatedAt)
	s.training = append(s.training, *record)
	return nil
}

// RecentTrainingRecords returns up to limit records, newest first
func (s *MemoryStore) RecentTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := append([]analysis.TrainingRecord(nil), s.training...)
	sort.Slice(records, func(i, j int) bool {
		return newestFirst(records[i].CreatedAt, records[j].CreatedAt, records[i].ID, records[j].ID)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// PendingTrainingRecords returns unprocessed records, heaviest then newest first
func (s *MemoryStore) PendingTrainingRecords(ctx context.Context, limit int) ([]analysis.TrainingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []analysis.TrainingRecord
	for _, r := range s.training {
		if !r.ProcessedForTraining {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].TrainingWeight != records[j].TrainingWeight {
			return records[i].TrainingWeight > records[j].TrainingWeight
		}
		return newestFirst(records[i].CreatedAt, records[j].CreatedAt, records[i].ID, records[j].ID)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// MarkProcessed flags a record as consumed by training
func (s *MemoryStore) MarkProcessed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.training {
		if s.training[i].ID == id {
			s.training[i].ProcessedForTraining = true
			return nil
		}
	}
	return core.ErrNotFound
}

// GetSettings returns core.ErrNotFound when the user has no settings
func (s *MemoryStore) GetSettings(ctx context.Context, userID string) (*core.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &settings, nil
}

// SaveSettings inserts or replaces the user's settings, keeping the original CreatedAt
func (s *MemoryStore) SaveSettings(ctx context.Context, settings *core.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = s.stamp(settings.UpdatedAt)
	if existing, ok := s.settings[settings.UserID]; ok {
		settings.CreatedAt = existing.CreatedAt
	}
	settings.CreatedAt = s.stamp(settings.CreatedAt)
	s.settings[settings.UserID] = *settings
	return nil
}

// Close releases nothing; the data is dropped with the store
func (s *MemoryStore) Close() error {
	s.logger.Debug("Closing memory store",
		zap.Int("analyses", len(s.analyses)),
		zap.Int("training_records", len(s.training)))
	return nil
}
