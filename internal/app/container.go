package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/api"
	"github.com/nekogravitycat/gym-booking-backend/internal/auth"
	"github.com/nekogravitycat/gym-booking-backend/internal/availability"
	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/event"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
	"github.com/nekogravitycat/gym-booking-backend/internal/trainer"
)

// Config holds the dependencies and settings required to start the application.
// A nil DBPool selects the in-memory stores; a nil Redis selects log-only events.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	Redis          *redis.Client
	EventStream    string
	EventStreamLen int
	JWTSecret      string
	JWTTTL         time.Duration
	Location       *time.Location
	Now            func() time.Time
	Logger         *zap.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	TrainerService trainer.Service
	SlotService    slot.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	calendar := schedule.NewCalendar(cfg.Location)
	if cfg.Now != nil {
		calendar.Now = cfg.Now
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var trainerRepo trainer.Repository
	var slotRepo slot.Repository
	var bookingRepo booking.Repository
	if cfg.DBPool != nil {
		trainerRepo = trainer.NewPgxRepository(cfg.DBPool)
		slotRepo = slot.NewPgxRepository(cfg.DBPool)
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
	} else {
		trainerRepo = trainer.NewMemoryRepository()
		slotRepo = slot.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
	}

	var publisher event.Publisher = event.NewLogPublisher(logger.Named("events"))
	if cfg.Redis != nil {
		publisher = event.NewStreamPublisher(cfg.Redis, cfg.EventStream, int64(cfg.EventStreamLen))
	}

	// Trainer Module
	trainerService := trainer.NewService(trainerRepo, logger.Named("trainer"))

	// Slot Module
	slotService := slot.NewService(slotRepo, trainerService, logger.Named("slot"))

	// Booking Module
	bookingService := booking.NewService(bookingRepo, slotService, trainerService, publisher, calendar, logger.Named("booking"))

	// Availability Module
	availabilityService := availability.NewService(trainerService, slotService, bookingService, calendar)

	checks := map[string]api.HealthCheck{}
	if cfg.DBPool != nil {
		checks["postgres"] = cfg.DBPool.Ping
	}
	if cfg.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return cfg.Redis.Ping(ctx).Err() }
	}

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              logger.Named("http"),
		Calendar:            calendar,
		TrainerService:      trainerService,
		SlotService:         slotService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		JWTManager:          jwtManager,
		HealthChecks:        checks,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		TrainerService: trainerService,
		SlotService:    slotService,
		BookingService: bookingService,
	}
}
