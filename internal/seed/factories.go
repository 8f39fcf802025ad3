// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumDormitories int
	NumStaff       int
	NumVisitors    int
	ShouldClean    bool
	DryRun         bool
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// fakeDocument produces an 11-digit document id, digits only.
func (f *Factory) fakeDocument() string {
	return gofakeit.Numerify("###########")
}

// fakePeriod produces a stay of 1..maxNights nights starting up to
// spreadDays from today (negative offsets give stays already underway).
func (f *Factory) fakePeriod(spreadDays, maxNights int) models.Period {
	start := models.TruncateToDay(time.Now()).AddDate(0, 0, f.rng.Intn(spreadDays*2)-spreadDays)
	nights := 1 + f.rng.Intn(maxNights)
	return models.Period{StartDate: start, EndDate: start.AddDate(0, 0, nights)}
}

// CreateDormitory constructs and persists a sample `models.Dormitory`.
// Optional override functions may modify the generated dormitory before saving.
func (f *Factory) CreateDormitory(overrides ...func(*models.Dormitory)) (*models.Dormitory, error) {
	dormitory := &models.Dormitory{
		Number:   fmt.Sprintf("%s-%03d", gofakeit.RandomString([]string{"A", "B", "C"}), gofakeit.Number(1, 999)),
		Capacity: 2 + f.rng.Intn(7),
		Status:   models.DormitoryStatusActive,
	}

	for _, override := range overrides {
		override(dormitory)
	}

	if f.opts.DryRun {
		f.nextID++
		dormitory.ID = f.nextID
		log.Printf("[dry-run] CreateDormitory: number=%s capacity=%d", dormitory.Number, dormitory.Capacity)
		return dormitory, nil
	}

	if err := f.db.Create(dormitory).Error; err != nil {
		return nil, err
	}
	return dormitory, nil
}

// CreateStaffReservation constructs and persists a sample `models.StaffReservation`.
func (f *Factory) CreateStaffReservation(overrides ...func(*models.StaffReservation)) (*models.StaffReservation, error) {
	period := f.fakePeriod(15, 7)
	reservation := &models.StaffReservation{
		FullName:     gofakeit.Name(),
		Document:     f.fakeDocument(),
		Registration: gofakeit.Numerify("MAT-#####"),
		Unit:         gofakeit.RandomString([]string{"1st Precinct", "2nd Precinct", "Forensics", "Academy", "Intelligence"}),
		Email:        gofakeit.Email(),
		Phone:        gofakeit.Numerify("###########"),
		StartDate:    period.StartDate,
		EndDate:      period.EndDate,
		Status:       models.ReservationStatusPending,
	}

	for _, override := range overrides {
		override(reservation)
	}

	if f.opts.DryRun {
		f.nextID++
		reservation.ID = f.nextID
		log.Printf("[dry-run] CreateStaffReservation: name=%q document=%s", reservation.FullName, reservation.Document)
		return reservation, nil
	}

	if err := f.db.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// CreateVisitorReservation constructs and persists a sample `models.VisitorReservation`.
func (f *Factory) CreateVisitorReservation(overrides ...func(*models.VisitorReservation)) (*models.VisitorReservation, error) {
	period := f.fakePeriod(15, 7)
	reservation := &models.VisitorReservation{
		FullName:  gofakeit.Name(),
		Document:  f.fakeDocument(),
		Agency:    gofakeit.RandomString([]string{"Federal Police", "State Court", "National Guard", "Highway Patrol", "Fire Department"}),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Numerify("###########"),
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Status:    models.ReservationStatusPending,
	}

	for _, override := range overrides {
		override(reservation)
	}

	if f.opts.DryRun {
		f.nextID++
		reservation.ID = f.nextID
		log.Printf("[dry-run] CreateVisitorReservation: name=%q document=%s", reservation.FullName, reservation.Document)
		return reservation, nil
	}

	if err := f.db.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// CreateOccupancy checks the given reservation into the dormitory at the
// given slot. The dormitory counter is adjusted directly; the seeder runs
// before the server and owns the whole dataset.
func (f *Factory) CreateOccupancy(ref models.ReservationRef, dormitory *models.Dormitory, slot int, overrides ...func(*models.Occupancy)) (*models.Occupancy, error) {
	occupancy := &models.Occupancy{
		DormitoryID:     dormitory.ID,
		Slot:            slot,
		ReservationKind: ref.Kind,
		ReservationID:   ref.ID,
		Status:          models.OccupancyStatusOccupied,
		CheckinAt:       time.Now().Add(-time.Duration(f.rng.Intn(48)) * time.Hour),
		CheckinBy:       1,
	}

	for _, override := range overrides {
		override(occupancy)
	}

	if f.opts.DryRun {
		f.nextID++
		occupancy.ID = f.nextID
		log.Printf("[dry-run] CreateOccupancy: dormitory=%d slot=%d", occupancy.DormitoryID, occupancy.Slot)
		return occupancy, nil
	}

	if err := f.db.Create(occupancy).Error; err != nil {
		return nil, err
	}
	if occupancy.Status == models.OccupancyStatusOccupied {
		if err := f.db.Model(&models.Dormitory{}).Where("id = ?", dormitory.ID).
			Update("occupied_count", gorm.Expr("occupied_count + 1")).Error; err != nil {
			return nil, err
		}
		dormitory.OccupiedCount++
	}
	return occupancy, nil
}
