package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/pkg/paystack"
	"github.com/ds124wfegd/eventmarket/internal/pkg/processor"
	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"

	"github.com/stretchr/testify/mock"
)

var errBoom = errors.New("boom")

// memStore backs every in-memory repository used by the service tests.
type memStore struct {
	mu         sync.Mutex
	events     map[string]*entity.Event
	banners    map[string]*entity.EventBanner
	tickets    map[string]*entity.TicketType
	organizers map[string]*entity.Organizer

	slugErr         error
	upsertErr       error
	bannerDeleteErr error
}

func newMemStore() *memStore {
	return &memStore{
		events:     map[string]*entity.Event{},
		banners:    map[string]*entity.EventBanner{},
		tickets:    map[string]*entity.TicketType{},
		organizers: map[string]*entity.Organizer{},
	}
}

type memEventRepo struct{ s *memStore }

func (r memEventRepo) Upsert(_ context.Context, event *entity.Event) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.upsertErr != nil {
		return nil, r.s.upsertErr
	}

	if existing, ok := r.s.events[event.ID]; ok && existing.OrganizerID != event.OrganizerID {
		return nil, entity.ErrEventNotFound
	}
	for id, e := range r.s.events {
		if id != event.ID && e.Slug == event.Slug {
			return nil, entity.ErrSlugAlreadyTaken
		}
	}

	saved := *event
	saved.Status = entity.EventStatusDraft
	saved.UpdatedAt = time.Now()
	r.s.events[event.ID] = &saved
	out := saved
	return &out, nil
}

func (r memEventRepo) GetByID(_ context.Context, id, organizerID string) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.OrganizerID != organizerID {
		return nil, entity.ErrEventNotFound
	}
	out := *e
	return &out, nil
}

func (r memEventRepo) GetDraft(ctx context.Context, id, organizerID string) (*entity.EventDraft, error) {
	event, err := r.GetByID(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	banners, _ := memBannerRepo{r.s}.ListByEventID(ctx, id)
	tickets, _ := memTicketRepo{r.s}.ListByEventID(ctx, id)
	return &entity.EventDraft{Event: *event, Banners: banners, TicketTypes: tickets}, nil
}

func (r memEventRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.slugErr != nil {
		return false, r.s.slugErr
	}
	for id, e := range r.s.events {
		if e.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type memBannerRepo struct{ s *memStore }

func (r memBannerRepo) Create(_ context.Context, b *entity.EventBanner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.CreatedAt = time.Now()
	out := *b
	r.s.banners[b.ID] = &out
	return nil
}

func (r memBannerRepo) GetByEventID(ctx context.Context, eventID string) (*entity.EventBanner, error) {
	banners, _ := r.ListByEventID(ctx, eventID)
	if len(banners) == 0 {
		return nil, nil
	}
	return banners[0], nil
}

func (r memBannerRepo) ListByEventID(_ context.Context, eventID string) ([]*entity.EventBanner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	banners := []*entity.EventBanner{}
	for _, b := range r.s.banners {
		if b.EventID == eventID {
			out := *b
			banners = append(banners, &out)
		}
	}
	return banners, nil
}

func (r memBannerRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.bannerDeleteErr != nil {
		return r.s.bannerDeleteErr
	}
	delete(r.s.banners, id)
	return nil
}

type memTicketRepo struct{ s *memStore }

func (r memTicketRepo) Create(_ context.Context, t *entity.TicketType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *t
	r.s.tickets[t.ID] = &out
	return nil
}

func (r memTicketRepo) ListByEventID(_ context.Context, eventID string) ([]*entity.TicketType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tickets := []*entity.TicketType{}
	for _, t := range r.s.tickets {
		if t.EventID == eventID {
			out := *t
			tickets = append(tickets, &out)
		}
	}
	return tickets, nil
}

type memOrganizerRepo struct {
	s         *memStore
	getErr    error
	createErr error
	updateErr error
}

func (r *memOrganizerRepo) Create(_ context.Context, o *entity.Organizer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.s.organizers {
		if existing.OwnerID == o.OwnerID {
			return entity.ErrOrganizerAlreadyExists
		}
	}
	out := *o
	r.s.organizers[o.ID] = &out
	return nil
}

func (r *memOrganizerRepo) GetByOwnerID(_ context.Context, ownerID string) (*entity.Organizer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, o := range r.s.organizers {
		if o.OwnerID == ownerID {
			out := *o
			return &out, nil
		}
	}
	return nil, entity.ErrOrganizerNotFound
}

func (r *memOrganizerRepo) UpdateRecipientCode(_ context.Context, id, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.s.organizers[id]
	if !ok {
		return entity.ErrOrganizerNotFound
	}
	o.RecipientCode = &code
	return nil
}

// memStorage is an in-memory storage.ObjectStorage.
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	writes    []string
	failRead  bool
	failWrite bool
	failDel   map[string]bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, failDel: map[string]bool{}}
}

func (s *memStorage) Bucket() string { return "eventmarket" }

func (s *memStorage) PresignPut(_ context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "https://storage.test/eventmarket/" + key + "?X-Amz-Expires=" + expiry.String() + "&ct=" + contentType, nil
}

func (s *memStorage) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return nil, errBoom
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *memStorage) Write(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errBoom
	}
	s.objects[key] = data
	s.writes = append(s.writes, key)
	return nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel[key] {
		return errBoom
	}
	delete(s.objects, key)
	return nil
}

func (s *memStorage) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

type stubProcessor struct {
	transcodeErr   error
	placeholderErr error
}

func (p stubProcessor) Transcode(data []byte) (*processor.ProcessedImage, error) {
	if p.transcodeErr != nil {
		return nil, p.transcodeErr
	}
	return &processor.ProcessedImage{Data: append([]byte("webp:"), data...), Width: 1920, Height: 1080}, nil
}

func (p stubProcessor) Placeholder([]byte) (string, error) {
	if p.placeholderErr != nil {
		return "", p.placeholderErr
	}
	return "LEHV6nWB2yk8pyo0adR*.7kCMdnj", nil
}

type recordingProducer struct {
	mu       sync.Mutex
	messages []interface{}
}

func (p *recordingProducer) SendMessage(_ context.Context, _ string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

type delayedMessage struct {
	message interface{}
	delay   time.Duration
}

type recordingQueue struct {
	mu         sync.Mutex
	delayed    []delayedMessage
	publishErr error
}

func (q *recordingQueue) PublishWithDelay(_ context.Context, message interface{}, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishErr != nil {
		return q.publishErr
	}
	q.delayed = append(q.delayed, delayedMessage{message: message, delay: delay})
	return nil
}

func (q *recordingQueue) Consume(context.Context, func(context.Context, []byte) error) error {
	return nil
}

func (q *recordingQueue) Close() error { return nil }

type mockPaystack struct {
	mock.Mock
}

func (m *mockPaystack) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error) {
	args := m.Called(ctx, accountNumber, bankCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ResolvedAccount), args.Error(1)
}

func (m *mockPaystack) CreateRecipient(ctx context.Context, req paystack.RecipientRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockPaystack) ListBanks(ctx context.Context) ([]entity.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Bank), args.Error(1)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
