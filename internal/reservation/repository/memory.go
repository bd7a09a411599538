package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/reservation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps reservations in process. It mirrors the Mongo repository's contract for
// equality filters and "$set" updates and is meant for tests and local runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	store map[primitive.ObjectID]reservation.Reservation
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[primitive.ObjectID]reservation.Reservation)}
}

func (m *MemoryRepo) Create(_ context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID()
	r, err := persisted(r)
	if err != nil {
		return reservation.Reservation{}, err
	}
	m.store[r.ID] = r
	m.order = append(m.order, r.ID)
	return r, nil
}

func (m *MemoryRepo) FindOne(ctx context.Context, filter any) (reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, err := m.first(filter)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return m.store[id], nil
}

func (m *MemoryRepo) Find(_ context.Context, filter any) ([]reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]reservation.Reservation, 0, len(m.order))
	for _, id := range m.order {
		ok, err := matches(m.store[id], filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m.store[id])
		}
	}
	return out, nil
}

func (m *MemoryRepo) FindOneAndUpdate(_ context.Context, filter, update any) (reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := m.first(filter)
	if err != nil {
		return reservation.Reservation{}, err
	}
	b, err := bson.Marshal(update)
	if err != nil {
		return reservation.Reservation{}, err
	}
	set := bson.Raw(b)
	if v, err := set.LookupErr("$set"); err == nil {
		set = v.Document()
	}
	r := m.store[id]
	if err := bson.Unmarshal(set, &r); err != nil {
		return reservation.Reservation{}, err
	}
	r.ID = id
	if r, err = persisted(r); err != nil {
		return reservation.Reservation{}, err
	}
	m.store[id] = r
	return r, nil
}

func (m *MemoryRepo) FindOneAndDelete(_ context.Context, filter any) (reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := m.first(filter)
	if err != nil {
		return reservation.Reservation{}, err
	}
	r := m.store[id]
	delete(m.store, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return r, nil
}

// persisted returns r as Mongo would hand it back: times in UTC at millisecond precision.
func persisted(r reservation.Reservation) (reservation.Reservation, error) {
	b, err := bson.Marshal(r)
	if err != nil {
		return reservation.Reservation{}, err
	}
	var out reservation.Reservation
	err = bson.Unmarshal(b, &out)
	return out, err
}

func (m *MemoryRepo) first(filter any) (primitive.ObjectID, error) {
	for _, id := range m.order {
		ok, err := matches(m.store[id], filter)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if ok {
			return id, nil
		}
	}
	return primitive.NilObjectID, database.ErrNotFound
}

// matches supports top-level equality filters only.
func matches(r reservation.Reservation, filter any) (bool, error) {
	f, err := bson.Marshal(filter)
	if err != nil {
		return false, err
	}
	doc, err := bson.Marshal(r)
	if err != nil {
		return false, err
	}
	elems, err := bson.Raw(f).Elements()
	if err != nil {
		return false, err
	}
	for _, e := range elems {
		if len(e.Key()) > 0 && e.Key()[0] == '$' {
			return false, errors.New("memory repository: operator filters are not supported")
		}
		v, err := bson.Raw(doc).LookupErr(e.Key())
		if err != nil || !v.Equal(e.Value()) {
			return false, nil
		}
	}
	return true, nil
}
