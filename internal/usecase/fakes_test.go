package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"InsightStream/internal/domain"
)

var testNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

type stubSearch struct {
	items []domain.Item
	err   error
	calls atomic.Int32
	terms []string
}

func (s *stubSearch) Search(_ context.Context, terms []string) ([]domain.Item, error) {
	s.calls.Add(1)
	s.terms = terms
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

// stubFeeds emits one item per subscription with a per-call namespace.
type stubFeeds struct {
	err   error
	calls atomic.Int32
	item  func(sub domain.SubscriptionConfig, call int32) domain.Item
}

func (s *stubFeeds) Poll(_ context.Context, subs []domain.SubscriptionConfig) ([]domain.Item, error) {
	call := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	items := make([]domain.Item, 0, len(subs))
	for _, sub := range subs {
		if s.item != nil {
			items = append(items, s.item(sub, call))
			continue
		}
		items = append(items, domain.Item{
			ID:       fmt.Sprintf("feed-%s-%d", sub.ID, call),
			Source:   sub.Name,
			Category: domain.CategorySocial,
		})
	}
	return items, nil
}

type stubAnalysis struct {
	calls   atomic.Int32
	err     error
	result  domain.Analysis
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *stubAnalysis) Analyze(ctx context.Context, title, _ string) (domain.Analysis, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return domain.Analysis{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domain.Analysis{}, s.err
	}
	res := s.result
	if res.Summary == "" {
		res.Summary = "summary of " + title
	}
	return res, nil
}

type memorySettings struct {
	keywords      []domain.KeywordConfig
	subscriptions []domain.SubscriptionConfig
}

func (m *memorySettings) LoadKeywords(context.Context) ([]domain.KeywordConfig, error) {
	return m.keywords, nil
}

func (m *memorySettings) SaveKeywords(_ context.Context, k []domain.KeywordConfig) error {
	m.keywords = k
	return nil
}

func (m *memorySettings) LoadSubscriptions(context.Context) ([]domain.SubscriptionConfig, error) {
	return m.subscriptions, nil
}

func (m *memorySettings) SaveSubscriptions(_ context.Context, s []domain.SubscriptionConfig) error {
	m.subscriptions = s
	return nil
}

type memoryRepository struct {
	mu      sync.Mutex
	items   []domain.Item
	updates []string
}

func (m *memoryRepository) LoadItems(context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.items...), nil
}

func (m *memoryRepository) AppendItems(_ context.Context, batch []domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(append([]domain.Item(nil), batch...), m.items...)
	return nil
}

func (m *memoryRepository) UpdateItem(_ context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, item.ID)
	for i := range m.items {
		if m.items[i].ID == item.ID && !m.items[i].Analyzed {
			m.items[i] = item
		}
	}
	return nil
}

type recordingNotifier struct {
	digests []string
	err     error
}

func (r *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	r.digests = append(r.digests, digest)
	return r.err
}

// manualDriver runs the job only when fire is called.
type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func (d *manualDriver) fire(t time.Time) {
	if d.job != nil {
		d.job(t)
	}
}
