package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BST1120/mapper2/internal/board"
	"github.com/BST1120/mapper2/internal/config"
	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionsDisabled   = errors.New("edit sessions disabled for tenant")
)

// SessionService issues and validates per-tenant edit sessions. The board is
// world-readable; mutating endpoints require a session token obtained with
// the tenant's admin PIN.
type SessionService struct {
	Config       config.Config
	Store        store.Store
	Logger       *slog.Logger
	FirebaseAuth *fbauth.Client
}

type SessionResult struct {
	Token     string
	ExpiresAt time.Time
}

func (s SessionService) Login(ctx context.Context, tenantID, pin string) (*SessionResult, error) {
	doc, err := s.Store.Get(ctx, store.TenantPath(tenantID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	var tenant domain.Tenant
	if err := store.DataTo(doc, &tenant); err != nil {
		return nil, err
	}
	if tenant.EditPINHash == "" {
		return nil, ErrSessionsDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(tenant.EditPINHash), []byte(pin)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(tenantID)
}

// SetPIN stores a fresh bcrypt hash on the tenant document.
func (s SessionService) SetPIN(ctx context.Context, tenantID, pin string) error {
	if len(pin) < 4 {
		return board.ValidationError("pin must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	return s.Store.Update(ctx, store.TenantPath(tenantID), store.Document{
		"editPinHash": string(hash),
		"updatedAt":   time.Now(),
	})
}

// HashPIN is used at bootstrap time before any tenant document exists.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// Verify checks an edit-session token and returns the tenant it grants.
func (s SessionService) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "edit" {
		return "", ErrInvalidToken
	}
	tenantID, _ := claims["sub"].(string)
	if tenantID == "" {
		return "", ErrInvalidToken
	}
	return tenantID, nil
}

// VerifyIdentity resolves an optional Firebase ID token into a device uid.
// With Firebase unconfigured every device is anonymous, which is fine; the
// uid only enriches audit entries.
func (s SessionService) VerifyIdentity(ctx context.Context, idToken string) (string, error) {
	if idToken == "" || s.FirebaseAuth == nil {
		return "", nil
	}
	tok, err := s.FirebaseAuth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("firebase token invalid: %w", err)
	}
	return tok.UID, nil
}

func (s SessionService) issueToken(tenantID string) (*SessionResult, error) {
	now := time.Now()
	exp := now.Add(s.Config.EditSessionTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        tenantID,
		"token_type": "edit",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &SessionResult{Token: token, ExpiresAt: exp}, nil
}
