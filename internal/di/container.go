package di

import (
	"github.com/courtside/field-booking/internal/gateway"
	"github.com/courtside/field-booking/internal/handler"
	"github.com/courtside/field-booking/internal/repository"
	"github.com/courtside/field-booking/internal/service"
	"github.com/courtside/field-booking/internal/worker"
	"github.com/courtside/field-booking/pkg/database"
	"github.com/courtside/field-booking/pkg/redis"
)

// Container holds all dependencies for the field booking service
type Container struct {
	// Infrastructure
	DB    *database.Postgres
	Redis *redis.Client

	// Gateways
	WalletGateway gateway.WalletGateway

	// Repositories
	FieldRepo    repository.FieldRepository
	TimeSlotRepo repository.TimeSlotRepository
	PricingRepo  repository.PricingRepository
	BookingRepo  repository.BookingRepository
	PaymentRepo  repository.PaymentRepository

	// Services
	PricingService service.PricingService
	BookingService service.BookingService
	PaymentService service.PaymentService
	EventPublisher service.EventPublisher
	Clock          service.Clock

	// Workers
	StaleBookingWorker *worker.StaleBookingWorker

	// Handlers
	PricingHandler *handler.PricingHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.Postgres
	Redis          *redis.Client
	WalletGateway  gateway.WalletGateway
	EventPublisher service.EventPublisher
	Clock          service.Clock
	PaymentConfig  *service.PaymentServiceConfig
	SweeperConfig  *worker.StaleBookingWorkerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:            cfg.DB,
		Redis:         cfg.Redis,
		WalletGateway: cfg.WalletGateway,
	}

	c.Clock = cfg.Clock
	if c.Clock == nil {
		c.Clock = service.NewClock()
	}
	c.EventPublisher = cfg.EventPublisher
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	if c.DB != nil {
		pool := c.DB.Pool()
		c.FieldRepo = repository.NewPostgresFieldRepository(pool)
		c.TimeSlotRepo = repository.NewPostgresTimeSlotRepository(pool)
		c.PricingRepo = repository.NewPostgresPricingRepository(pool)
		c.BookingRepo = repository.NewPostgresBookingRepository(pool)
		c.PaymentRepo = repository.NewPostgresPaymentRepository(pool)
	} else {
		fieldRepo := repository.NewMemoryFieldRepository()
		slotRepo := repository.NewMemoryTimeSlotRepository()
		bookingRepo := repository.NewMemoryBookingRepository()
		c.FieldRepo = fieldRepo
		c.TimeSlotRepo = slotRepo
		c.PricingRepo = repository.NewMemoryPricingRepository(slotRepo)
		c.BookingRepo = bookingRepo
		c.PaymentRepo = repository.NewMemoryPaymentRepository(bookingRepo)
	}

	c.PricingService = service.NewPricingService(c.FieldRepo, c.TimeSlotRepo, c.PricingRepo, c.Clock)
	c.BookingService = service.NewBookingService(c.FieldRepo, c.TimeSlotRepo, c.PricingRepo, c.BookingRepo, c.EventPublisher, c.Clock)
	c.PaymentService = service.NewPaymentService(c.BookingRepo, c.PaymentRepo, c.WalletGateway, c.EventPublisher, c.Clock, cfg.PaymentConfig)

	c.StaleBookingWorker = worker.NewStaleBookingWorker(c.BookingRepo, c.EventPublisher, c.Clock, cfg.SweeperConfig)

	c.PricingHandler = handler.NewPricingHandler(c.PricingService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis, c.StaleBookingWorker)

	return c
}
