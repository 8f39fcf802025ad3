package seed

import (
	"fmt"
	"log"
	"time"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"

	"gorm.io/gorm"
)

// Seed populates the database with demo data: a mix of dormitories, pending
// and approved reservations of both kinds, and a spread of active and
// released occupancies.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumDormitories <= 0 {
		opts.NumDormitories = 6
	}
	if opts.NumStaff <= 0 {
		opts.NumStaff = 20
	}
	if opts.NumVisitors <= 0 {
		opts.NumVisitors = 10
	}

	log.Printf("Seeding %d dormitories, %d staff and %d visitor reservations...",
		opts.NumDormitories, opts.NumStaff, opts.NumVisitors)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	f := NewFactory(db, opts)

	dormitories := make([]*models.Dormitory, 0, opts.NumDormitories)
	for i := 0; i < opts.NumDormitories; i++ {
		dormitory, err := f.CreateDormitory(func(d *models.Dormitory) {
			// keep one room in maintenance and one on standby for realism
			switch i {
			case opts.NumDormitories - 1:
				d.Status = models.DormitoryStatusMaintenance
			case opts.NumDormitories - 2:
				d.Status = models.DormitoryStatusStandby
			}
		})
		if err != nil {
			return fmt.Errorf("failed to create dormitory: %w", err)
		}
		dormitories = append(dormitories, dormitory)
	}
	log.Printf("%d dormitories created", len(dormitories))

	var approved []models.ReservationRef
	for i := 0; i < opts.NumStaff; i++ {
		decided := i%3 != 0
		reservation, err := f.CreateStaffReservation(func(r *models.StaffReservation) {
			if decided {
				r.Status = models.ReservationStatusApproved
			}
		})
		if err != nil {
			return fmt.Errorf("failed to create staff reservation: %w", err)
		}
		if decided {
			approved = append(approved, reservation.Ref())
		}
	}

	for i := 0; i < opts.NumVisitors; i++ {
		switch i % 4 {
		case 0:
			if _, err := f.CreateVisitorReservation(); err != nil {
				return fmt.Errorf("failed to create visitor reservation: %w", err)
			}
		case 1:
			if _, err := f.CreateVisitorReservation(func(r *models.VisitorReservation) {
				r.Status = models.ReservationStatusRejected
				r.RejectReason = "No vacancy for the requested period"
			}); err != nil {
				return fmt.Errorf("failed to create visitor reservation: %w", err)
			}
		default:
			reservation, err := f.CreateVisitorReservation(func(r *models.VisitorReservation) {
				r.Status = models.ReservationStatusApproved
			})
			if err != nil {
				return fmt.Errorf("failed to create visitor reservation: %w", err)
			}
			approved = append(approved, reservation.Ref())
		}
	}
	log.Printf("%d reservations approved", len(approved))

	occupancies, err := checkinSome(f, dormitories, approved)
	if err != nil {
		return fmt.Errorf("failed to create occupancies: %w", err)
	}
	log.Printf("%d occupancies created", occupancies)

	log.Println("Seeding completed")
	return nil
}

// checkinSome checks roughly half of the approved reservations into active
// dormitories, filling slots in order and skipping full rooms.
func checkinSome(f *Factory, dormitories []*models.Dormitory, approved []models.ReservationRef) (int, error) {
	created := 0
	for i, ref := range approved {
		if i%2 != 0 {
			continue
		}
		dormitory := nextOpenDormitory(dormitories)
		if dormitory == nil {
			break
		}
		released := created%5 == 4
		if _, err := f.CreateOccupancy(ref, dormitory, dormitory.OccupiedCount+1, func(o *models.Occupancy) {
			if released {
				o.Status = models.OccupancyStatusReleased
				checkout := o.CheckinAt.Add(12 * time.Hour)
				operator := uint(1)
				o.CheckoutAt = &checkout
				o.CheckoutBy = &operator
			}
		}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func nextOpenDormitory(dormitories []*models.Dormitory) *models.Dormitory {
	for _, d := range dormitories {
		if d.EligibleForCheckin() {
			return d
		}
	}
	return nil
}

// clearData removes all seedable rows. Occupancies go first to respect the
// foreign key to dormitories.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Occupancy{},
		&models.StaffReservation{},
		&models.VisitorReservation{},
		&models.Dormitory{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
