package models

import "time"

// OccupancyStatus represents the state of an occupancy record.
type OccupancyStatus string

const (
	// OccupancyStatusOccupied indicates the slot is currently in use.
	OccupancyStatusOccupied OccupancyStatus = "occupied"
	// OccupancyStatusReleased indicates the stay has been checked out.
	// Released is terminal; an occupancy is never re-activated or deleted.
	OccupancyStatusReleased OccupancyStatus = "released"
)

// Occupancy is the record of a reservation physically checked into a slot.
//
// The unique index on (reservation_kind, reservation_id) enforces the
// lifetime one-shot rule at the schema level: once an occupancy exists for
// a reservation, even a released one, the reservation can never check in
// again. Postgres additionally carries a partial unique index on
// (dormitory_id, slot) WHERE status = 'occupied' (see migrations).
type Occupancy struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	DormitoryID     uint            `gorm:"not null;index:idx_occupancies_dormitory" json:"dormitory_id"`
	Slot            int             `gorm:"not null" json:"slot"`
	ReservationKind ReservationKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_occupancies_reservation" json:"reservation_kind"`
	ReservationID   uint            `gorm:"not null;uniqueIndex:idx_occupancies_reservation" json:"reservation_id"`
	Status          OccupancyStatus `gorm:"type:varchar(10);default:'occupied';index:idx_occupancies_status" json:"status"`
	CheckinAt       time.Time       `gorm:"not null" json:"checkin_at"`
	CheckinBy       uint            `gorm:"not null" json:"checkin_by"`
	CheckoutAt      *time.Time      `json:"checkout_at,omitempty"`
	CheckoutBy      *uint           `json:"checkout_by,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relationships
	Dormitory Dormitory `gorm:"foreignKey:DormitoryID" json:"dormitory,omitempty"`
}

// TableName specifies the table name for GORM
func (Occupancy) TableName() string {
	return "occupancies"
}

// Ref returns the tagged reference to the reservation this occupancy serves.
func (o *Occupancy) Ref() ReservationRef {
	return ReservationRef{Kind: o.ReservationKind, ID: o.ReservationID}
}

// Active reports whether the slot is still held.
func (o *Occupancy) Active() bool {
	return o.Status == OccupancyStatusOccupied
}
