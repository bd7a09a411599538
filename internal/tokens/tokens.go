package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aircnc/aircnc-server/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrRevoked = errors.New("token has been revoked")

// Issuer signs and verifies the HS256 access tokens handed out at login.
type Issuer struct {
	secret    []byte
	ttl       time.Duration
	blacklist *Blacklist
	now       func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, blacklist *Blacklist) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, blacklist: blacklist, now: time.Now}
}

// Issue returns a signed token for userID and the time it expires.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse checks signature and expiry and returns the claims. It does not consult the blacklist.
func (i *Issuer) Parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, errors.New("token is missing sub or exp")
	}
	return claims, nil
}

// Verify parses raw and rejects tokens whose id was revoked.
func (i *Issuer) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims, err := i.Parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := i.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return &verified{claims: claims}, nil
}

// Revoke blacklists raw until it expires.
func (i *Issuer) Revoke(ctx context.Context, raw string) error {
	claims, err := i.Parse(raw)
	if err != nil {
		return err
	}
	return i.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(i.now()))
}

type verified struct {
	claims *jwt.RegisteredClaims
}

func (v *verified) Claims(out interface{}) error {
	b, err := json.Marshal(v.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
