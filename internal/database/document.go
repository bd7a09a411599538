package database

import "go.mongodb.org/mongo-driver/bson/primitive"

// Base carries the identifier every persisted document has. Embed it in document structs.
type Base struct {
	ID primitive.ObjectID `bson:"_id" json:"_id"`
}

func (b Base) GetID() primitive.ObjectID { return b.ID }

func (b *Base) SetID(id primitive.ObjectID) { b.ID = id }

// Identifiable is satisfied by *T when T embeds Base (or declares the same methods).
type Identifiable[T any] interface {
	*T
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
}
