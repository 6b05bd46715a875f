package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/types"
)

const (
	magicLinkTTL    = 15 * time.Minute
	sessionTokenTTL = 24 * time.Hour
)

// EmailSender delivers the magic-link email.
type EmailSender interface {
	SendMagicLinkEmail(to, link string) error
}

// AuthService implements passwordless email sign-in: a one-time magic-link
// token is mailed to the user and exchanged for a session JWT.
type AuthService struct {
	db        *gorm.DB
	tokens    TokenStore
	email     EmailSender
	jwtSecret string
	baseURL   string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, tokens TokenStore, email EmailSender, jwtSecret, baseURL string) *AuthService {
	return &AuthService{
		db:        db,
		tokens:    tokens,
		email:     email,
		jwtSecret: jwtSecret,
		baseURL:   baseURL,
	}
}

// RequestMagicLink creates the user on first sight (unverified, empty name),
// stores a hashed one-time token and mails the sign-in link. The response is
// identical whether or not the address was already known.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}

	user := models.User{Email: email}
	if err := s.db.WithContext(ctx).Where("email = ?", email).FirstOrCreate(&user).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := newLoginToken()
	if err != nil {
		return err
	}
	if err := s.tokens.SaveLoginToken(ctx, hashLoginToken(token), user.ID, magicLinkTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", s.baseURL, url.QueryEscape(token))
	return s.email.SendMagicLinkEmail(email, link)
}

// VerifyMagicLink exchanges a magic-link token for a session JWT. The token
// is single-use; verification also marks the email address verified.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (string, *models.User, error) {
	if token == "" {
		return "", nil, ErrInvalidToken
	}

	userID, err := s.tokens.ConsumeLoginToken(ctx, hashLoginToken(token))
	if err != nil {
		return "", nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, ErrInvalidToken
		}
		return "", nil, err
	}

	if user.EmailVerifiedAt == nil {
		now := time.Now()
		if err := s.db.WithContext(ctx).Model(&user).Update("email_verified_at", now).Error; err != nil {
			return "", nil, err
		}
		user.EmailVerifiedAt = &now
	}

	sessionToken, err := s.IssueSessionToken(&user)
	if err != nil {
		return "", nil, err
	}
	return sessionToken, &user, nil
}

// IssueSessionToken generates a signed session JWT for the user.
func (s *AuthService) IssueSessionToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(sessionTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a session JWT.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	return &types.TokenClaims{
		UserID: userID,
		Email:  email,
	}, nil
}

// newLoginToken returns 32 bytes of randomness, URL-safe encoded.
func newLoginToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate login token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashLoginToken hashes a token before storage so a leaked token store cannot
// be replayed.
func hashLoginToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
