package users

import (
	"context"
	"errors"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("credentials are not valid")
)

// Store is the part of the users repository the service needs.
type Store interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindOne(ctx context.Context, filter any) (models.User, error)
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
}

// Service encapsulates user-related business logic
type Service struct {
	store Store
	cost  int
}

func NewService(s Store) *Service {
	return &Service{store: s, cost: bcrypt.DefaultCost}
}

// Create registers a user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (models.User, error) {
	_, err := s.store.FindOne(ctx, bson.M{"email": req.Email})
	switch {
	case err == nil:
		return models.User{}, ErrEmailTaken
	case !errors.Is(err, database.ErrNotFound):
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.store.Create(ctx, models.User{Email: req.Email, Password: string(hash)})
	if mongo.IsDuplicateKeyError(err) {
		return models.User{}, ErrEmailTaken
	}
	return u, err
}

// Verify returns the user owning email when password matches its hash.
func (s *Service) Verify(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.store.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get looks a user up by hex id. A malformed id is reported as database.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, database.ErrNotFound
	}
	return s.store.FindOne(ctx, bson.M{"_id": oid})
}
