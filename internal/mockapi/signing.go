package mockapi

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadSignature = errors.New("invalid or expired signature")

// signMedia returns a short-lived signature granting access to one media path
func (s *Server) signMedia(path string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   path,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.signedURLTTL)),
	}
	sig, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign media url: %w", err)
	}
	return sig, nil
}

// verifyMedia checks that sig grants access to path
func (s *Server) verifyMedia(path, sig string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(sig, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if claims.Subject != path {
		return ErrBadSignature
	}
	return nil
}
