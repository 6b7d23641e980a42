package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
	"greenbus/backend/internal/utils"
)

// AuthService issues the JWTs that operator devices and rider apps present
// on every call.
type AuthService struct {
	Users     UserStore
	Secret    string
	TokenTTL  time.Duration
	RequestID string
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      models.User `json:"user"`
}

func (s AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	utils.LogEvent(s.RequestID, "auth", "login", "email="+req.Email)

	user, err := s.Users.FindByEmail(ctx, req.Email)
	if domain.IsNotFound(err) {
		return nil, domain.UnauthorizedError{Msg: "invalid email or password"}
	}
	if err != nil {
		return nil, err
	}
	if user.Status != "" && user.Status != "active" {
		return nil, domain.UnauthorizedError{Msg: "account is " + user.Status}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.UnauthorizedError{Msg: "invalid email or password"}
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expires := utils.NowUTC().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  utils.NowUTC().Unix(),
		"exp":  expires.Unix(),
	})
	signed, err := token.SignedString([]byte(s.Secret))
	if err != nil {
		return nil, domain.InternalError{Msg: "token signing failed", Err: err}
	}

	return &LoginResult{
		Token:     signed,
		ExpiresAt: expires.Format(time.RFC3339),
		User:      *user,
	}, nil
}
