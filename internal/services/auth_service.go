package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatgraph/config"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/repository"
	chat_errors "chatgraph/pkg/errors"
	"chatgraph/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Name     string `validate:"required,max=64"`
	Password string `validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
}

type AccessClaims struct {
	Username string `json:"usr,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validateInput(in); err != nil {
		return AuthResponse{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	now := time.Now()
	newUser := &user.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.respond(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validateInput(in); err != nil {
		return AuthResponse{}, err
	}

	u, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return AuthResponse{}, chat_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, chat_errors.ErrUnauthorized
	}

	return s.respond(u)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, chat_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chat_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, chat_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, chat_errors.ErrUnauthorized
	}
	return *claims, nil
}

// Authenticate resolves a bearer token to the user id it was issued for.
func (s *AuthService) Authenticate(tokenString string) (uuid.UUID, error) {
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) respond(u user.User) (AuthResponse, error) {
	token, expiresIn, err := s.newAccessToken(u)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User:        ToUserInfo(u),
	}, nil
}

func (s *AuthService) newAccessToken(u user.User) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return token, int64(s.accessTTL.Seconds()), nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ToUserInfo(u user.User) UserInfo {
	return UserInfo{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Picture:  u.Picture,
	}
}

type ctxKey string

const userIDKey ctxKey = "auth_user_id"

// WithUserContext marks ctx as authenticated as userID and adds the id to
// the fields logged through logger.WithContext.
func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, logger.UserIdKey, userID.String())
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}
	return userID, nil
}
