package seed

import (
	"testing"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Dormitory{},
		&models.StaffReservation{},
		&models.VisitorReservation{},
		&models.Occupancy{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSeedProducesConsistentDataset(t *testing.T) {
	db := setupSeedTestDB(t)

	if err := Seed(db, Options{NumDormitories: 4, NumStaff: 9, NumVisitors: 8}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var dormitories int64
	db.Model(&models.Dormitory{}).Count(&dormitories)
	if dormitories != 4 {
		t.Fatalf("expected 4 dormitories, got %d", dormitories)
	}

	var staff, visitors int64
	db.Model(&models.StaffReservation{}).Count(&staff)
	db.Model(&models.VisitorReservation{}).Count(&visitors)
	if staff != 9 || visitors != 8 {
		t.Fatalf("expected 9 staff and 8 visitors, got %d and %d", staff, visitors)
	}

	// every occupancy must point at an approved reservation, and the cached
	// counter must equal the number of active rows per dormitory
	var occupancies []models.Occupancy
	db.Find(&occupancies)
	for _, o := range occupancies {
		switch o.ReservationKind {
		case models.ReservationKindStaff:
			var r models.StaffReservation
			if err := db.First(&r, o.ReservationID).Error; err != nil {
				t.Fatalf("occupancy %d points at missing staff reservation %d", o.ID, o.ReservationID)
			}
			if r.Status != models.ReservationStatusApproved {
				t.Fatalf("occupancy %d points at %s reservation", o.ID, r.Status)
			}
		case models.ReservationKindVisitor:
			var r models.VisitorReservation
			if err := db.First(&r, o.ReservationID).Error; err != nil {
				t.Fatalf("occupancy %d points at missing visitor reservation %d", o.ID, o.ReservationID)
			}
			if r.Status != models.ReservationStatusApproved {
				t.Fatalf("occupancy %d points at %s reservation", o.ID, r.Status)
			}
		}
	}

	var dormRows []models.Dormitory
	db.Find(&dormRows)
	for _, d := range dormRows {
		var active int64
		db.Model(&models.Occupancy{}).
			Where("dormitory_id = ? AND status = ?", d.ID, models.OccupancyStatusOccupied).
			Count(&active)
		if int(active) != d.OccupiedCount {
			t.Fatalf("dormitory %s counter %d does not match %d active rows", d.Number, d.OccupiedCount, active)
		}
		if d.OccupiedCount > d.Capacity {
			t.Fatalf("dormitory %s over capacity: %d > %d", d.Number, d.OccupiedCount, d.Capacity)
		}
	}
}

func TestSeedCleanRemovesPreviousRun(t *testing.T) {
	db := setupSeedTestDB(t)

	if err := Seed(db, Options{NumDormitories: 3, NumStaff: 6, NumVisitors: 4}); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := Seed(db, Options{NumDormitories: 3, NumStaff: 6, NumVisitors: 4, ShouldClean: true}); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var dormitories int64
	db.Model(&models.Dormitory{}).Count(&dormitories)
	if dormitories != 3 {
		t.Fatalf("expected clean run to leave 3 dormitories, got %d", dormitories)
	}
}

func TestFactoryDryRunWritesNothing(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db, Options{DryRun: true})

	dormitory, err := f.CreateDormitory()
	if err != nil {
		t.Fatalf("dry-run dormitory failed: %v", err)
	}
	if dormitory.ID == 0 {
		t.Fatal("dry-run dormitory should get a synthetic ID")
	}
	if _, err := f.CreateStaffReservation(); err != nil {
		t.Fatalf("dry-run staff reservation failed: %v", err)
	}

	var count int64
	db.Model(&models.Dormitory{}).Count(&count)
	if count != 0 {
		t.Fatalf("dry-run wrote %d dormitories", count)
	}
}
