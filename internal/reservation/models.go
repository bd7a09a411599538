package reservation

import (
	"time"

	"github.com/aircnc/aircnc-server/internal/database"
)

// Reservation is a booking of a place by a user. Overlaps are not checked.
type Reservation struct {
	database.Base `bson:",inline"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	StartDate     time.Time `bson:"startDate" json:"startDate"`
	EndDate       time.Time `bson:"endDate" json:"endDate"`
	UserID        string    `bson:"userId" json:"userId"`
	PlaceID       string    `bson:"placeId" json:"placeId"`
	InvoiceID     string    `bson:"invoiceId" json:"invoiceId"`
}

// CreateRequest is the body of POST /reservations. Dates are RFC 3339.
type CreateRequest struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	PlaceID   string    `json:"placeId" binding:"required"`
	InvoiceID string    `json:"invoiceId" binding:"required"`
}

// UpdateRequest is the body of PATCH /reservations/:id. Only fields present in the body are
// written; it marshals to the update document as-is.
type UpdateRequest struct {
	StartDate *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	PlaceID   *string    `json:"placeId,omitempty" bson:"placeId,omitempty" binding:"omitempty,min=1"`
	InvoiceID *string    `json:"invoiceId,omitempty" bson:"invoiceId,omitempty" binding:"omitempty,min=1"`
}

// Empty reports whether the request sets no field.
func (u UpdateRequest) Empty() bool {
	return u.StartDate == nil && u.EndDate == nil && u.PlaceID == nil && u.InvoiceID == nil
}
