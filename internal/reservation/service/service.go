package service

import (
	"context"
	"errors"
	"time"

	"github.com/aircnc/aircnc-server/internal/reservation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID = errors.New("invalid reservation id")
	// ErrInvalidRange is returned when a change would leave endDate at or before startDate.
	ErrInvalidRange = errors.New("endDate must be after startDate")
)

// Store is the document repository the service runs on. Both repository.MongoRepo and
// repository.MemoryRepo satisfy it.
type Store interface {
	Create(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
	FindOne(ctx context.Context, filter any) (reservation.Reservation, error)
	Find(ctx context.Context, filter any) ([]reservation.Reservation, error)
	FindOneAndUpdate(ctx context.Context, filter, update any) (reservation.Reservation, error)
	FindOneAndDelete(ctx context.Context, filter any) (reservation.Reservation, error)
}

// Service holds the reservation operations used by the handler layer.
type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create stamps the reservation with the current time and the caller's user id.
func (s *Service) Create(ctx context.Context, userID string, req reservation.CreateRequest) (reservation.Reservation, error) {
	return s.store.Create(ctx, reservation.Reservation{
		Timestamp: s.now().UTC(),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		UserID:    userID,
		PlaceID:   req.PlaceID,
		InvoiceID: req.InvoiceID,
	})
}

func (s *Service) List(ctx context.Context) ([]reservation.Reservation, error) {
	return s.store.Find(ctx, bson.M{})
}

func (s *Service) Get(ctx context.Context, id string) (reservation.Reservation, error) {
	filter, err := byID(id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return s.store.FindOne(ctx, filter)
}

// Update overwrites the fields present in req and returns the updated reservation. Date
// changes are checked against the stored dates they leave in place.
func (s *Service) Update(ctx context.Context, id string, req reservation.UpdateRequest) (reservation.Reservation, error) {
	filter, err := byID(id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if req.Empty() {
		return s.store.FindOne(ctx, filter)
	}
	if req.StartDate != nil || req.EndDate != nil {
		cur, err := s.store.FindOne(ctx, filter)
		if err != nil {
			return reservation.Reservation{}, err
		}
		start, end := cur.StartDate, cur.EndDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		if !end.After(start) {
			return reservation.Reservation{}, ErrInvalidRange
		}
	}
	return s.store.FindOneAndUpdate(ctx, filter, bson.M{"$set": req})
}

// Delete removes the reservation and returns it as it was.
func (s *Service) Delete(ctx context.Context, id string) (reservation.Reservation, error) {
	filter, err := byID(id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return s.store.FindOneAndDelete(ctx, filter)
}

func byID(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return bson.M{"_id": oid}, nil
}
