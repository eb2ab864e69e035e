package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"picklist/internal/auth"
	"picklist/internal/repos"
)

var ErrBadCreds = errors.New("invalid picker code or password")

// AuthService authenticates pickers against the users table and issues
// API tokens. The core only ever consumes the resulting user code; how
// that code was obtained is this service's business.
type AuthService struct {
	Users  *repos.UserRepo
	Secret string
}

// Login checks the badge code and password and returns a signed token.
func (s *AuthService) Login(code, password string) (string, error) {
	u, err := s.Users.ByCode(code)
	if err != nil {
		return "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", ErrBadCreds
	}
	return auth.GenerateToken(s.Secret, u.ID, u.Code)
}

// UserCode validates a token and returns the picker code it carries.
// Tokens outlive badge revocation, so the picker must still exist.
func (s *AuthService) UserCode(token string) (string, error) {
	claims, err := auth.ValidateToken(s.Secret, token)
	if err != nil {
		return "", err
	}
	if _, err := s.Users.ByID(claims.UserID); err != nil {
		return "", ErrBadCreds
	}
	return claims.UserCode, nil
}
