package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/requestdata"
	"github.com/contentforge/moderation-backend/internal/types"
)

type JWTClaims struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*types.Reviewer, error)
	Login(ctx context.Context, email, password string) (string, *types.Reviewer, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	reviewerRepo repos.ReviewerRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, reviewerRepo repos.ReviewerRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		reviewerRepo: reviewerRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, displayName string) (*types.Reviewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", apperrors.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", apperrors.ErrValidation)
	}
	if displayName == "" {
		return nil, fmt.Errorf("display name is required: %w", apperrors.ErrValidation)
	}
	exists, err := as.reviewerRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check reviewer email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already in use: %w", apperrors.ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	reviewer := &types.Reviewer{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
	}
	if err := as.reviewerRepo.Create(ctx, nil, reviewer); err != nil {
		return nil, fmt.Errorf("create reviewer: %w", err)
	}
	return reviewer, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.Reviewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required: %w", apperrors.ErrValidation)
	}
	reviewer, err := as.reviewerRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid email or password")
	}
	token, err := as.generateAccessToken(reviewer)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return token, reviewer, nil
}

func (as *authService) generateAccessToken(reviewer *types.Reviewer) (string, error) {
	claims := JWTClaims{
		DisplayName: reviewer.DisplayName,
		Email:       reviewer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reviewer.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	reviewerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid reviewer id in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		ReviewerID:  reviewerID,
		Reviewer:    claims.DisplayName,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
