package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courtside/field-booking/internal/domain"
	"github.com/courtside/field-booking/internal/repository"
)

// fakeClock pins the service time for tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEventType
}

func (p *recordingPublisher) record(t domain.BookingEventType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, t)
	return nil
}

func (p *recordingPublisher) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	return p.record(domain.BookingEventCreated)
}

func (p *recordingPublisher) PublishBookingCancelled(ctx context.Context, b *domain.Booking) error {
	return p.record(domain.BookingEventCancelled)
}

func (p *recordingPublisher) PublishBookingCompleted(ctx context.Context, b *domain.Booking) error {
	return p.record(domain.BookingEventCompleted)
}

func (p *recordingPublisher) PublishBookingExpired(ctx context.Context, b *domain.Booking) error {
	return p.record(domain.BookingEventExpired)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []domain.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.BookingEventType, len(p.events))
	copy(out, p.events)
	return out
}

// fixture bundles the in-memory repositories behind the services under test
type fixture struct {
	fieldRepo   *repository.MemoryFieldRepository
	slotRepo    *repository.MemoryTimeSlotRepository
	pricingRepo *repository.MemoryPricingRepository
	bookingRepo *repository.MemoryBookingRepository
	paymentRepo *repository.MemoryPaymentRepository
	clock       *fakeClock
	publisher   *recordingPublisher
}

func newFixture(now time.Time) *fixture {
	fieldRepo := repository.NewMemoryFieldRepository()
	slotRepo := repository.NewMemoryTimeSlotRepository()
	bookingRepo := repository.NewMemoryBookingRepository()
	return &fixture{
		fieldRepo:   fieldRepo,
		slotRepo:    slotRepo,
		pricingRepo: repository.NewMemoryPricingRepository(slotRepo),
		bookingRepo: bookingRepo,
		paymentRepo: repository.NewMemoryPaymentRepository(bookingRepo),
		clock:       newFakeClock(now),
		publisher:   &recordingPublisher{},
	}
}

func (f *fixture) addField(id string, active bool) *domain.Field {
	field := &domain.Field{
		ID:           id,
		Name:         "Field " + id,
		PricePerHour: decimal.NewFromInt(100000),
		IsActive:     active,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	f.fieldRepo.Add(field)
	return field
}

func (f *fixture) pricingService() PricingService {
	return NewPricingService(f.fieldRepo, f.slotRepo, f.pricingRepo, f.clock)
}

func (f *fixture) bookingService() BookingService {
	return NewBookingService(f.fieldRepo, f.slotRepo, f.pricingRepo, f.bookingRepo, f.publisher, f.clock)
}
