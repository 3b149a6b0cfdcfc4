package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/app"
	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/config"
	"github.com/nekogravitycat/gym-booking-backend/internal/db"
	"github.com/nekogravitycat/gym-booking-backend/internal/logger"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
	"github.com/nekogravitycat/gym-booking-backend/internal/trainer"
)

var specialties = []string{
	"Strength",
	"Hypertrophy",
	"Mobility",
	"Boxing",
	"Yoga",
	"Pilates",
	"CrossFit",
	"Rehabilitation",
	"Endurance",
	"Nutrition",
}

func main() {
	trainers := flag.Int("trainers", 20, "number of trainers to create")
	bookings := flag.Int("bookings", 200, "number of bookings to attempt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		log.Fatal("seed requires STORAGE_DRIVER=postgres")
	}

	lg, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	gofakeit.Seed(0)

	container := app.NewContainer(app.Config{
		DBPool:    pool,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTAccessTokenTTL,
		Location:  cfg.GymLocation,
		Logger:    zap.NewNop(),
	})

	slotsByTrainer, err := seedTrainers(ctx, container, *trainers)
	if err != nil {
		lg.Fatal("seed trainers", zap.Error(err))
	}
	lg.Info("trainers seeded", zap.Int("count", len(slotsByTrainer)))

	created, err := seedBookings(ctx, container.BookingService, slotsByTrainer, *bookings, schedule.NewCalendar(cfg.GymLocation))
	if err != nil {
		lg.Fatal("seed bookings", zap.Error(err))
	}
	lg.Info("seed complete", zap.Int("bookings", created))
}

func seedTrainers(ctx context.Context, c *app.Container, count int) (map[string][]*slot.Slot, error) {
	out := make(map[string][]*slot.Slot, count)

	for i := 0; i < count; i++ {
		t, err := c.TrainerService.Create(ctx, trainer.CreateRequest{
			Name:      gofakeit.Name(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
		})
		if err != nil {
			return nil, err
		}

		for _, day := range schedule.Weekdays {
			if gofakeit.Number(0, 2) == 0 {
				continue
			}
			// Back-to-back hour slots starting somewhere between 06:00 and 12:00.
			start := gofakeit.Number(6, 12) * 60
			for n := gofakeit.Number(1, 5); n > 0; n-- {
				w := schedule.Window{Start: schedule.Clock(start), End: schedule.Clock(start + 60)}
				s, err := c.SlotService.CreateSlot(ctx, slot.CreateRequest{
					TrainerID: t.ID,
					Day:       day.String(),
					StartTime: w.Start.String(),
					EndTime:   w.End.String(),
				})
				if err != nil {
					return nil, err
				}
				out[t.ID] = append(out[t.ID], s)
				start += 60
			}
		}
	}
	return out, nil
}

func seedBookings(ctx context.Context, svc booking.Service, slotsByTrainer map[string][]*slot.Slot, count int, cal schedule.Calendar) (int, error) {
	var all []*slot.Slot
	for _, slots := range slotsByTrainer {
		all = append(all, slots...)
	}
	if len(all) == 0 {
		return 0, nil
	}

	created := 0
	for i := 0; i < count; i++ {
		s := all[gofakeit.Number(0, len(all)-1)]
		date := schedule.NextOccurrence(s.Day, cal.Today()).AddDate(0, 0, 7*gofakeit.Number(0, 3))

		_, err := svc.CreateBooking(ctx, booking.CreateRequest{
			TrainerID:  s.TrainerID,
			SlotID:     s.ID,
			Date:       date,
			ClientName: gofakeit.Name(),
			Contact: booking.Contact{
				Phone: gofakeit.Phone(),
				Email: gofakeit.Email(),
			},
		})
		if apperror.KindOf(err) == apperror.KindConflict {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

