// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus represents the approval state of a reservation.
type ReservationStatus string

const (
	// ReservationStatusPending indicates a reservation awaiting an administrative decision.
	ReservationStatusPending ReservationStatus = "pending"
	// ReservationStatusApproved indicates an approved reservation.
	ReservationStatusApproved ReservationStatus = "approved"
	// ReservationStatusRejected indicates a rejected reservation. Rejection carries a reason.
	ReservationStatusRejected ReservationStatus = "rejected"
)

// ReservationKind discriminates the two concrete reservation variants.
type ReservationKind string

const (
	// ReservationKindStaff is a reservation made by a staff member.
	ReservationKindStaff ReservationKind = "staff"
	// ReservationKindVisitor is a reservation made by an outside visitor.
	ReservationKindVisitor ReservationKind = "visitor"
)

// ReservationRef is the tagged polymorphic reference to a concrete reservation.
type ReservationRef struct {
	Kind ReservationKind `json:"kind"`
	ID   uint            `json:"id"`
}

// Identity is the person a reservation belongs to. Document is normalized
// to digits only before persistence; all identity-based rules (single
// pending, no overlapping approvals) key on it.
type Identity struct {
	FullName string `json:"full_name"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Period is an inclusive date range. StartDate and EndDate are stored at
// midnight UTC; EndDate >= StartDate always holds for persisted rows.
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return !p.StartDate.After(other.EndDate) && !other.StartDate.After(p.EndDate)
}

// CheckinGraceDays is how many calendar days before the period start a
// check-in is already permitted.
const CheckinGraceDays = 1

// WindowOpen reports whether check-in is permitted at the given instant:
// from one calendar day before the start date through the end date.
func (p Period) WindowOpen(now time.Time) bool {
	day := TruncateToDay(now)
	open := p.StartDate.AddDate(0, 0, -CheckinGraceDays)
	return !day.Before(open) && !day.After(p.EndDate)
}

// TruncateToDay drops the time-of-day component, keeping midnight UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Reservable is the single abstraction the allocation engine works with.
// Both reservation variants implement it; call sites never branch on the
// concrete type.
type Reservable interface {
	Ref() ReservationRef
	ProtocolID() string
	Requester() Identity
	Stay() Period
	CurrentStatus() ReservationStatus
}

// StaffReservation is a dormitory stay request made by a staff member.
type StaffReservation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Protocol     string            `gorm:"type:varchar(36);uniqueIndex" json:"protocol"`
	FullName     string            `gorm:"not null" json:"full_name"`
	Document     string            `gorm:"type:varchar(14);not null;index:idx_staff_reservations_document" json:"document"`
	Registration string            `gorm:"type:varchar(32)" json:"registration"`
	Unit         string            `json:"unit"`
	Email        string            `json:"email"`
	Phone        string            `gorm:"type:varchar(20)" json:"phone"`
	StartDate    time.Time         `gorm:"not null" json:"start_date"`
	EndDate      time.Time         `gorm:"not null" json:"end_date"`
	Status       ReservationStatus `gorm:"type:varchar(20);default:'pending';index:idx_staff_reservations_status" json:"status"`
	RejectReason string            `json:"reject_reason,omitempty"`
	DocumentPath string            `json:"document_path,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (StaffReservation) TableName() string {
	return "staff_reservations"
}

// BeforeCreate assigns the external protocol code.
func (r *StaffReservation) BeforeCreate(_ *gorm.DB) error {
	if r.Protocol == "" {
		r.Protocol = uuid.NewString()
	}
	return nil
}

// Ref returns the tagged reference for this reservation.
func (r *StaffReservation) Ref() ReservationRef {
	return ReservationRef{Kind: ReservationKindStaff, ID: r.ID}
}

// ProtocolID returns the external protocol code.
func (r *StaffReservation) ProtocolID() string {
	return r.Protocol
}

// Requester returns the identity of the staff member.
func (r *StaffReservation) Requester() Identity {
	return Identity{FullName: r.FullName, Document: r.Document, Email: r.Email, Phone: r.Phone}
}

// Stay returns the requested period.
func (r *StaffReservation) Stay() Period {
	return Period{StartDate: r.StartDate, EndDate: r.EndDate}
}

// CurrentStatus returns the approval state.
func (r *StaffReservation) CurrentStatus() ReservationStatus {
	return r.Status
}

// VisitorReservation is a dormitory stay request made by an outside visitor.
type VisitorReservation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Protocol     string            `gorm:"type:varchar(36);uniqueIndex" json:"protocol"`
	FullName     string            `gorm:"not null" json:"full_name"`
	Document     string            `gorm:"type:varchar(14);not null;index:idx_visitor_reservations_document" json:"document"`
	Agency       string            `json:"agency"`
	Email        string            `json:"email"`
	Phone        string            `gorm:"type:varchar(20)" json:"phone"`
	StartDate    time.Time         `gorm:"not null" json:"start_date"`
	EndDate      time.Time         `gorm:"not null" json:"end_date"`
	Status       ReservationStatus `gorm:"type:varchar(20);default:'pending';index:idx_visitor_reservations_status" json:"status"`
	RejectReason string            `json:"reject_reason,omitempty"`
	DocumentPath string            `json:"document_path,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (VisitorReservation) TableName() string {
	return "visitor_reservations"
}

// BeforeCreate assigns the external protocol code.
func (r *VisitorReservation) BeforeCreate(_ *gorm.DB) error {
	if r.Protocol == "" {
		r.Protocol = uuid.NewString()
	}
	return nil
}

// Ref returns the tagged reference for this reservation.
func (r *VisitorReservation) Ref() ReservationRef {
	return ReservationRef{Kind: ReservationKindVisitor, ID: r.ID}
}

// ProtocolID returns the external protocol code.
func (r *VisitorReservation) ProtocolID() string {
	return r.Protocol
}

// Requester returns the identity of the visitor.
func (r *VisitorReservation) Requester() Identity {
	return Identity{FullName: r.FullName, Document: r.Document, Email: r.Email, Phone: r.Phone}
}

// Stay returns the requested period.
func (r *VisitorReservation) Stay() Period {
	return Period{StartDate: r.StartDate, EndDate: r.EndDate}
}

// CurrentStatus returns the approval state.
func (r *VisitorReservation) CurrentStatus() ReservationStatus {
	return r.Status
}
