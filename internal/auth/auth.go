// Package auth issues and verifies the tokens the HTTP layer and the
// websocket handshake share.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"livetimer-echo/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserNotFound = errors.New("user not found")
	ErrBanned       = errors.New("account is banned")
)

// Identity is the resolved authenticated user attached to a request or
// socket connection. Absence of an Identity means anonymous.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

func GenerateToken(secret, userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Verifier resolves an opaque credential to an Identity, rejecting
// unknown and banned users.
type Verifier struct {
	secret string
	q      *repository.Queries
}

func NewVerifier(secret string, q *repository.Queries) *Verifier {
	return &Verifier{secret: secret, q: q}
}

func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := v.q.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Banned {
		// A ban with an expiry in the past no longer applies.
		if !user.BanExpires.Valid || user.BanExpires.Time.After(time.Now()) {
			return nil, ErrBanned
		}
	}

	return &Identity{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}, nil
}
