package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dairyflow/internal/model"
	"dairyflow/internal/repository"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
	"dairyflow/pkg/logger"
	"dairyflow/tokenstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	Issuer           = "dairyflow-mock-backend"
	SessionKeyPrefix = "dairyflow:session:"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionExpired     = errors.New("session expired")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type AuthConfig struct {
	SigningKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// RotateRefreshTokens revokes a refresh token once it has been used and
	// returns a replacement with the new access token.
	RotateRefreshTokens bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now overrides the clock used to stamp and verify tokens.
	Now func() time.Time
}

// AuthService issues and verifies the mock backend's HS256 tokens. Refresh
// tokens are allow-listed by their JTI in sessions.
type AuthService struct {
	users    repository.UserRepository
	farm     *FarmService
	sessions tokenstore.Backend
	cfg      AuthConfig
	key      []byte
}

type UserClaims struct {
	UserID     string               `json:"uid"`
	Email      string               `json:"email"`
	UserType   constraints.UserType `json:"utype"`
	CompanyID  string               `json:"cid,omitempty"`
	EmployeeID string               `json:"eid,omitempty"`
	TokenType  string               `json:"typ"`
	jwt.RegisteredClaims
}

func NewAuthService(users repository.UserRepository, farm *FarmService, sessions tokenstore.Backend, cfg AuthConfig) *AuthService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    users,
		farm:     farm,
		sessions: sessions,
		cfg:      cfg,
		key:      []byte(cfg.SigningKey),
	}
}

func (s *AuthService) Login(ctx context.Context, req v1.LoginRequest) (*v1.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(ctx, user)
}

func (s *AuthService) RegisterCompany(ctx context.Context, req v1.RegisterCompanyRequest) (*v1.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, repository.ErrEmailTaken
	}

	company := s.farm.CreateCompany(ctx, v1.Company{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     constraints.UserTypeCompany,
		CompanyID:    company.ID,
		CreatedAt:    s.cfg.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("company registered", zap.String("company_id", company.ID), zap.String("user_id", user.ID))
	return s.authResponse(ctx, user)
}

func (s *AuthService) RegisterEmployee(ctx context.Context, req v1.RegisterEmployeeRequest) (*v1.AuthResponse, error) {
	companyID, err := s.farm.ResolveCode(ctx, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, repository.ErrEmailTaken
	}

	employee, err := s.farm.Employees.Create(ctx, companyID, v1.Employee{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Active: true,
	})
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		UserType:     constraints.UserTypeEmployee,
		CompanyID:    companyID,
		EmployeeID:   employee.ID,
		CreatedAt:    s.cfg.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("employee registered", zap.String("company_id", companyID), zap.String("user_id", user.ID))
	return s.authResponse(ctx, user)
}

// Refresh exchanges an allow-listed refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*v1.RefreshResponse, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	key := SessionKeyPrefix + claims.ID
	owner, err := s.sessions.Get(ctx, key)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	if owner != claims.UserID {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrSessionExpired
	}

	access, err := s.sign(user, tokenTypeAccess, s.cfg.AccessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	out := &v1.RefreshResponse{AccessToken: access}

	if s.cfg.RotateRefreshTokens {
		if err := s.sessions.Delete(ctx, key); err != nil {
			return nil, err
		}
		if out.RefreshToken, err = s.issueRefreshToken(ctx, user); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req v1.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// VerifyAccessToken validates an access token and returns its operator.
func (s *AuthService) VerifyAccessToken(token string) (*OperatorInfo, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &OperatorInfo{
		UserID:     claims.UserID,
		Email:      claims.Email,
		UserType:   claims.UserType,
		CompanyID:  claims.CompanyID,
		EmployeeID: claims.EmployeeID,
	}, nil
}

func (s *AuthService) authResponse(ctx context.Context, user *model.User) (*v1.AuthResponse, error) {
	access, err := s.sign(user, tokenTypeAccess, s.cfg.AccessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	out := &v1.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User: v1.AuthUser{
			ID:         user.ID,
			Email:      user.Email,
			UserType:   user.UserType,
			CompanyID:  user.CompanyID,
			EmployeeID: user.EmployeeID,
		},
	}
	switch user.UserType {
	case constraints.UserTypeCompany:
		if company, err := s.farm.Company(ctx, user.CompanyID); err == nil {
			out.Company = &company
		}
	case constraints.UserTypeEmployee:
		if employee, err := s.farm.Employees.Get(ctx, user.CompanyID, user.EmployeeID); err == nil {
			out.Employee = &employee
		}
	}
	return out, nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, user *model.User) (string, error) {
	jti := uuid.NewString()
	token, err := s.sign(user, tokenTypeRefresh, s.cfg.RefreshTokenTTL, jti)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Set(ctx, SessionKeyPrefix+jti, user.ID); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *AuthService) sign(user *model.User, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := s.cfg.Now()
	claims := UserClaims{
		UserID:     user.ID,
		Email:      user.Email,
		UserType:   user.UserType,
		CompanyID:  user.CompanyID,
		EmployeeID: user.EmployeeID,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *AuthService) parse(raw, tokenType string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &UserClaims{}, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
