package database

import "github.com/Matias7xx/adm-pcpb-sub000/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Dormitory{},
		&models.StaffReservation{},
		&models.VisitorReservation{},
		&models.Occupancy{},
	}
}
