package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/aircnc/aircnc-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a filter matches no document for an operation that needs one.
var ErrNotFound = errors.New("document was not found")

// Repository implements create/read/update/delete for one document type over one collection.
// Reads decode into T, so fields the store keeps for itself (e.g. a "__v" version key)
// never reach callers. Driver errors other than "no documents" are returned unchanged.
type Repository[T any, PT Identifiable[T]] struct {
	col *mongo.Collection
	log *zap.SugaredLogger
}

// NewRepository binds T to col. name is used as the logger name (e.g. "UsersRepository").
func NewRepository[T any, PT Identifiable[T]](col *mongo.Collection, name string) *Repository[T, PT] {
	return &Repository[T, PT]{col: col, log: logger.Named(name)}
}

// Create assigns a fresh ObjectID to doc, inserts it and returns it. An ID already set on
// doc is replaced. The result is decoded from the inserted bytes, so it equals what a later
// FindOne returns (times come back in UTC at millisecond precision).
func (r *Repository[T, PT]) Create(ctx context.Context, doc T) (T, error) {
	var zero T
	PT(&doc).SetID(primitive.NewObjectID())
	raw, err := bson.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("encode document: %w", err)
	}
	if _, err := r.col.InsertOne(ctx, bson.Raw(raw)); err != nil {
		r.observe("create", err)
		return zero, err
	}
	r.observe("create", nil)
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// FindOne returns the first document matching filter.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter any) (T, error) {
	var doc T
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	return r.single("findOne", filter, doc, err)
}

// Find returns every document matching filter in the store's natural order. No match is an
// empty, non-nil slice.
func (r *Repository[T, PT]) Find(ctx context.Context, filter any) ([]T, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		r.observe("find", err)
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			r.observe("find", err)
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cur.Err(); err != nil {
		r.observe("find", err)
		return nil, err
	}
	r.observe("find", nil)
	return out, nil
}

// FindOneAndUpdate applies update to the first document matching filter and returns the
// document after the update. An update without top-level operators is applied as $set.
// An empty plain update becomes {$set: {}}, which the store rejects.
func (r *Repository[T, PT]) FindOneAndUpdate(ctx context.Context, filter, update any) (T, error) {
	var doc T
	u, err := setUpdate(update)
	if err != nil {
		return doc, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.col.FindOneAndUpdate(ctx, filter, u, opts).Decode(&doc)
	return r.single("findOneAndUpdate", filter, doc, err)
}

// FindOneAndDelete removes the first document matching filter and returns it as it was
// before deletion.
func (r *Repository[T, PT]) FindOneAndDelete(ctx context.Context, filter any) (T, error) {
	var doc T
	err := r.col.FindOneAndDelete(ctx, filter).Decode(&doc)
	return r.single("findOneAndDelete", filter, doc, err)
}

func (r *Repository[T, PT]) single(op string, filter any, doc T, err error) (T, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.log.Warnw("document not found", "operation", op, "collection", r.col.Name(), "filter", filter)
		metrics.RepositoryOperations.WithLabelValues(r.col.Name(), op, "not_found").Inc()
		var zero T
		return zero, ErrNotFound
	}
	r.observe(op, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return doc, nil
}

func (r *Repository[T, PT]) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		r.log.Debugw("store operation failed", "operation", op, "collection", r.col.Name(), "error", err)
	}
	metrics.RepositoryOperations.WithLabelValues(r.col.Name(), op, outcome).Inc()
}

// setUpdate wraps a plain field document in $set. Documents that already use update
// operators pass through unchanged.
func setUpdate(update any) (any, error) {
	raw, err := bson.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	elems, err := bson.Raw(raw).Elements()
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	for _, e := range elems {
		if strings.HasPrefix(e.Key(), "$") {
			return bson.Raw(raw), nil
		}
	}
	return bson.D{{Key: "$set", Value: bson.Raw(raw)}}, nil
}
