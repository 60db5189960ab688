// Package auth implements the login endpoint.
//
// NOT FOR PRODUCTION: neither authenticator verifies credentials. Any
// non-empty email and password pair is accepted. Substitute a real
// Authenticator before exposing the service.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"backoffice/pkg/apperror"
)

// DemoToken is the fixed token returned by DemoAuthenticator.
const DemoToken = "demo-token"

// DemoUserID is the fixed user id returned by DemoAuthenticator.
const DemoUserID = "1"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
}

func validate(email, password string) error {
	if email == "" || password == "" {
		return apperror.Validation("email and password are required")
	}
	return nil
}

// DemoAuthenticator accepts any non-empty pair and returns a fixed token.
type DemoAuthenticator struct{}

func (DemoAuthenticator) Login(_ context.Context, email, password string) (*LoginResponse, error) {
	if err := validate(email, password); err != nil {
		return nil, err
	}
	return &LoginResponse{Token: DemoToken, User: User{ID: DemoUserID, Email: email}}, nil
}

// JWTAuthenticator accepts the same pairs as DemoAuthenticator but issues an
// HS256 token that the bearer middleware can verify.
type JWTAuthenticator struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewJWTAuthenticator(secret []byte, ttl time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{Secret: secret, TTL: ttl, Now: time.Now}
}

func (a *JWTAuthenticator) Login(_ context.Context, email, password string) (*LoginResponse, error) {
	if err := validate(email, password); err != nil {
		return nil, err
	}
	now := a.Now()
	userID := UserIDForEmail(email)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.TTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResponse{Token: token, User: User{ID: userID, Email: email}}, nil
}

// UserIDForEmail derives a stable id from an email address.
func UserIDForEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "u_" + hex.EncodeToString(sum[:6])
}

// ParseToken verifies an HS256 token and returns its subject.
func ParseToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
