package models

import "github.com/aircnc/aircnc-server/internal/database"

// User is an account of the auth service. Password holds the bcrypt hash and is never
// rendered to JSON.
type User struct {
	database.Base `bson:",inline"`
	Email         string `bson:"email" json:"email"`
	Password      string `bson:"password" json:"-"`
}
