package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/naijasafe/emergency-api/internal/config"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

const bcryptCost = 12

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
}

type service struct {
	userRepo repository.UserRepository
	cfg      config.JWTConfig
}

func NewService(userRepo repository.UserRepository, cfg config.JWTConfig) Service {
	return &service{userRepo: userRepo, cfg: cfg}
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, apperrors.Conflict("an account with this email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	// Unknown email and bad password are indistinguishable to the caller.
	if user == nil {
		return nil, apperrors.Unauthorized("incorrect email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("incorrect email or password", err)
	}

	return s.generateTokens(user)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	return s.generateTokens(user)
}

func (s *service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.parseToken(token, s.cfg.Secret)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}

func (s *service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	expiry := time.Duration(s.cfg.ExpiryHours) * time.Hour
	access, err := s.signToken(user, s.cfg.Secret, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExpiry := time.Duration(s.cfg.RefreshExpiryHours) * time.Hour
	refresh, err := s.signToken(user, s.cfg.RefreshSecret, refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(expiry.Seconds()),
	}, nil
}

func (s *service) signToken(user *model.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"email":    user.Email,
		"is_staff": user.IsStaff,
		"iat":      now.Unix(),
		"exp":      now.Add(expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *service) parseToken(tokenString, secret string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	rawID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	email, _ := claims["email"].(string)
	isStaff, _ := claims["is_staff"].(bool)

	return &model.TokenClaims{
		UserID:  userID,
		Email:   email,
		IsStaff: isStaff,
	}, nil
}
