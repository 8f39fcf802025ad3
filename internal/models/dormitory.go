package models

import "time"

// DormitoryStatus represents the operational state of a dormitory.
type DormitoryStatus string

const (
	// DormitoryStatusActive indicates a dormitory open for general allocation.
	DormitoryStatusActive DormitoryStatus = "active"
	// DormitoryStatusInactive indicates a dormitory closed for use.
	DormitoryStatusInactive DormitoryStatus = "inactive"
	// DormitoryStatusMaintenance indicates a dormitory under maintenance.
	DormitoryStatusMaintenance DormitoryStatus = "maintenance"
	// DormitoryStatusStandby indicates a dormitory held back for a separate
	// internal purpose. Standby dormitories never receive general check-ins,
	// even with free slots.
	DormitoryStatusStandby DormitoryStatus = "standby"
)

// Dormitory is a physical room with a fixed number of numbered bed slots.
//
// OccupiedCount is a read-optimization cache. It is recomputed from active
// occupancy rows inside every transaction that mutates occupancies and is
// never authoritative on its own.
type Dormitory struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Number        string          `gorm:"type:varchar(16);not null;uniqueIndex" json:"number"`
	Capacity      int             `gorm:"not null" json:"capacity"`
	Status        DormitoryStatus `gorm:"type:varchar(20);default:'active';index:idx_dormitories_status" json:"status"`
	OccupiedCount int             `gorm:"not null;default:0" json:"occupied_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Dormitory) TableName() string {
	return "dormitories"
}

// Vacancy returns the number of free slots according to the cached counter.
func (d *Dormitory) Vacancy() int {
	v := d.Capacity - d.OccupiedCount
	if v < 0 {
		return 0
	}
	return v
}

// EligibleForCheckin reports whether the dormitory may receive a general
// check-in: active status and at least one free slot. Standby dormitories
// are excluded by status.
func (d *Dormitory) EligibleForCheckin() bool {
	return d.Status == DormitoryStatusActive && d.Vacancy() > 0
}
