package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"medboard_backend/internal/model"
	"medboard_backend/internal/taxonomy"

	"gorm.io/gorm"
)

type memQuestionStore struct {
	mu        sync.Mutex
	questions []*model.Question
	createErr error
	// failCreates fails only the first n creates
	failCreates int
	created     int
}

func (m *memQuestionStore) Create(q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	if m.createErr != nil && (m.failCreates == 0 || m.created <= m.failCreates) {
		return m.createErr
	}
	q.ID = uint(len(m.questions) + 1)
	m.questions = append(m.questions, q)
	return nil
}

func (m *memQuestionStore) FindByID(id uint) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memQuestionStore) FindByDiscipline(discipline string) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.Discipline != nil && *q.Discipline == discipline {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memQuestionStore) Vote(id uint, up bool) (*model.Question, error) {
	q, err := m.FindByID(id)
	if err != nil {
		return nil, err
	}
	if up {
		q.Upvotes++
	} else {
		q.Downvotes++
	}
	return q, nil
}

func (m *memQuestionStore) FindUntagged(limit int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.questions {
		if !q.IsTagged() && len(out) < limit {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *memQuestionStore) UpdateTags(q *model.Question) error {
	stored, err := m.FindByID(q.ID)
	if err != nil {
		return err
	}
	stored.ApplyTags(q.Tags())
	return nil
}

type memResponseStore struct {
	responses []*model.Response
	err       error
}

func (m *memResponseStore) Create(r *model.Response) error {
	if m.err != nil {
		return m.err
	}
	r.ID = uint(len(m.responses) + 1)
	m.responses = append(m.responses, r)
	return nil
}

type stubGenerator struct {
	question *GeneratedQuestion
	err      error
	calls    int
}

func (g *stubGenerator) Generate(_ context.Context, specialty, difficulty string) (*GeneratedQuestion, error) {
	g.calls++
	if g.err != nil {
		return nil, &GenerationError{Specialty: specialty, Difficulty: difficulty, Err: g.err}
	}
	return g.question, nil
}

type stubTagger struct {
	tags     model.TagRecord
	contents []string
	// fallback makes Classify report the default record
	fallback bool
}

func (t *stubTagger) Tag(ctx context.Context, content string, options map[string]string) model.TagRecord {
	tags, _ := t.Classify(ctx, content, options)
	return tags
}

func (t *stubTagger) Classify(_ context.Context, content string, _ map[string]string) (model.TagRecord, bool) {
	t.contents = append(t.contents, content)
	if t.fallback {
		return model.DefaultTagRecord(), false
	}
	return t.tags, true
}

type stubEvaluator struct{ text string }

func (e stubEvaluator) Feedback(context.Context, *model.Question, string) string { return e.text }

type memCache struct {
	entries     map[string][]taxonomy.CategoryStat
	versions    map[uint]int64
	invalidated []uint
	setErr      error
	versionErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]taxonomy.CategoryStat{}, versions: map[uint]int64{}}
}

func cacheKey(userID uint, version int64, dim taxonomy.Dimension) string {
	return fmt.Sprintf("%d:v%d:%s", userID, version, dim)
}

func (c *memCache) SummaryVersion(userID uint) (int64, error) {
	return c.versions[userID], c.versionErr
}

func (c *memCache) GetSummary(userID uint, version int64, dim taxonomy.Dimension) ([]taxonomy.CategoryStat, bool) {
	stats, ok := c.entries[cacheKey(userID, version, dim)]
	return stats, ok
}

func (c *memCache) SetSummary(userID uint, version int64, dim taxonomy.Dimension, stats []taxonomy.CategoryStat) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[cacheKey(userID, version, dim)] = stats
	return nil
}

func (c *memCache) InvalidateUser(userID uint) error {
	c.invalidated = append(c.invalidated, userID)
	c.versions[userID]++
	return nil
}

// cached returns the summary stored under the user's current generation.
func (c *memCache) cached(userID uint, dim taxonomy.Dimension) ([]taxonomy.CategoryStat, bool) {
	return c.GetSummary(userID, c.versions[userID], dim)
}

type stubHistory struct {
	answers    []model.AnsweredQuestion
	total      int64
	correct    int64
	difficulty []model.CountRow
	days       []model.CountRow
	active     int64
	answered   int64
	popular    []model.DisciplineUsage
	err        error

	listCalls int
	since     time.Time
	// onList runs while answers are being read
	onList func()
}

func (h *stubHistory) ListWithQuestions(uint) ([]model.AnsweredQuestion, error) {
	h.listCalls++
	if h.onList != nil {
		h.onList()
	}
	return h.answers, h.err
}

func (h *stubHistory) ListWithQuestionsSince(_ uint, since time.Time) ([]model.AnsweredQuestion, error) {
	h.since = since
	return h.answers, h.err
}

func (h *stubHistory) CountSince(uint, time.Time) (int64, int64, error) {
	return h.total, h.correct, h.err
}

func (h *stubHistory) CountByDifficulty(uint, time.Time) ([]model.CountRow, error) {
	return h.difficulty, h.err
}

func (h *stubHistory) CountByDay(uint, time.Time) ([]model.CountRow, error) {
	return h.days, h.err
}

func (h *stubHistory) UsageSince(time.Time) (int64, int64, error) {
	return h.active, h.answered, h.err
}

func (h *stubHistory) PopularDisciplines(time.Time, int) ([]model.DisciplineUsage, error) {
	return h.popular, h.err
}

var errStorage = errors.New("database is down")

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func list(items ...string) model.EncodedList { return model.NewEncodedList(items) }
