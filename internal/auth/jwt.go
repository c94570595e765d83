// Package auth signs and verifies expiring document download links.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

const (
	linkAudience = "document"
	keyInfo      = "document-link-v1"
	keyLen       = 32
)

// LinkManager issues HS256 tokens that grant read access to one archived document.
type LinkManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkManager derives the signing key from the master secret with HKDF-SHA256.
// secret must be at least 32 characters.
func NewLinkManager(secret, issuer string, ttl time.Duration) (*LinkManager, error) {
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(issuer), []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive link key: %w", err)
	}
	return &LinkManager{key: key, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

type linkClaims struct {
	jwt.RegisteredClaims
	Form string `json:"form,omitempty"`
}

// Sign creates a token for the given reference.
func (m *LinkManager) Sign(reference string, form domain.FormType) (string, error) {
	now := m.now()
	claims := linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reference,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{linkAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Form: form.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign link: %w", err)
	}
	return signed, nil
}

// Verify checks that token is valid, unexpired and issued for reference.
// Every failure wraps domain.ErrUnauthorized.
func (m *LinkManager) Verify(token, reference string) error {
	if token == "" {
		return fmt.Errorf("link token is empty: %w", domain.ErrUnauthorized)
	}

	parsed, err := jwt.ParseWithClaims(token, &linkClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(linkAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("link expired: %w", domain.ErrUnauthorized)
		}
		return fmt.Errorf("parse link: %v: %w", err, domain.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*linkClaims)
	if !ok || !parsed.Valid {
		return fmt.Errorf("invalid link claims: %w", domain.ErrUnauthorized)
	}
	if !strings.EqualFold(claims.Subject, reference) {
		return fmt.Errorf("link issued for %s: %w", claims.Subject, domain.ErrUnauthorized)
	}
	return nil
}

// URL returns the absolute download link for reference under baseURL.
func (m *LinkManager) URL(baseURL, reference string, form domain.FormType) (string, error) {
	token, err := m.Sign(reference, form)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + "/api/documents/" + url.PathEscape(reference) + "?token=" + url.QueryEscape(token), nil
}
