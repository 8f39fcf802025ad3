package server

import (
	"testing"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/config"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/featureflags"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/repository"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer builds a Server over an in-memory sqlite database without
// Redis. Metrics middleware is left out; registering the Prometheus
// collectors twice in one process panics.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Dormitory{},
		&models.StaffReservation{},
		&models.VisitorReservation{},
		&models.Occupancy{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	dormitoryRepo := repository.NewDormitoryRepository(db)
	occupancyRepo := repository.NewOccupancyRepository(db)

	s := &Server{
		config:          &config.Config{JWTSecret: "test-secret", Port: "0"},
		db:              db,
		reservationRepo: reservationRepo,
		dormitoryRepo:   dormitoryRepo,
		occupancyRepo:   occupancyRepo,
		featureFlags:    featureflags.NewManager(""),
	}
	s.reservationService = service.NewReservationService(reservationRepo)
	s.allocationService = service.NewAllocationService(db, nil)
	s.occupancyService = service.NewOccupancyService(db, occupancyRepo, nil)
	s.dormitoryService = service.NewDormitoryService(dormitoryRepo, occupancyRepo)
	return s, db
}

// newHandlerApp returns a fiber app whose requests carry the given operator,
// mirroring what AuthRequired does for authenticated routes.
func newHandlerApp(operatorID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("operatorID", operatorID)
		return c.Next()
	})
	return app
}

func testDay(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return day
}
