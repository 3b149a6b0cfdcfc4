package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/auth"
	"github.com/nekogravitycat/gym-booking-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/gym-booking-backend/internal/availability/http"
	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/gym-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
	slotHttp "github.com/nekogravitycat/gym-booking-backend/internal/slot/http"
	"github.com/nekogravitycat/gym-booking-backend/internal/trainer"
	trainerHttp "github.com/nekogravitycat/gym-booking-backend/internal/trainer/http"
)

// Config carries what the router needs to build handlers.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	Logger              *zap.Logger
	Calendar            schedule.Calendar
	TrainerService      trainer.Service
	SlotService         slot.Service
	AvailabilityService availability.Service
	BookingService      booking.Service
	JWTManager          *auth.JWTManager
	HealthChecks        map[string]HealthCheck
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request id, logging, recovery, CORS, auth) and registers module routes.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(cfg.Logger), Recovery(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8081"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	r.Use(cors.New(corsConfig))

	health := &healthHandler{checks: cfg.HealthChecks}
	r.GET("/health/live", health.live)
	r.GET("/health/ready", health.ready)

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	staffMiddleware := auth.RequireRole(auth.RoleStaff)

	trainerHandler := trainerHttp.NewHandler(cfg.TrainerService)
	slotHandler := slotHttp.NewHandler(cfg.SlotService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService, cfg.Calendar)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	v1 := r.Group("/v1")
	{
		trainerHttp.RegisterRoutes(v1, trainerHandler, authMiddleware, staffMiddleware)
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware, staffMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, staffMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
