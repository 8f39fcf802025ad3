// Package service contains the business logic for reservations, approval
// decisions and dormitory occupancy.
package service

import (
	"fmt"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/models"
)

// CheckReservationConflict decides whether a new stay for a document can be
// accepted given that person's existing reservations. The rules:
//
//   - at most one pending reservation per document, across both kinds
//   - the requested period must not overlap an approved reservation
//   - rejected reservations never block anything
//
// The check is pure; callers load the candidate set and pass it in.
func CheckReservationConflict(existing []models.Reservable, requested models.Period) error {
	for _, r := range existing {
		switch r.CurrentStatus() {
		case models.ReservationStatusPending:
			return models.NewConflictError(
				fmt.Sprintf("a pending reservation (protocol %s) already exists for this document", r.ProtocolID()))
		case models.ReservationStatusApproved:
			if requested.Overlaps(r.Stay()) {
				return models.NewConflictError(
					fmt.Sprintf("the requested period overlaps an approved reservation (protocol %s)", r.ProtocolID()))
			}
		case models.ReservationStatusRejected:
			// no constraint
		}
	}
	return nil
}
