package service

import (
	"context"
	"errors"
	"fmt"

	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
	"dairyflow/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrMissingToken    = errors.New("auth response did not contain an access token")
	ErrInvalidUserType = errors.New("auth response carried an unknown user type")
)

type AuthService struct {
	api   Requester
	store SessionStore
}

func NewAuthService(api Requester, store SessionStore) *AuthService {
	return &AuthService{
		api:   api,
		store: store,
	}
}

// Login authenticates and persists the session (tokens and enriched profile).
func (s *AuthService) Login(ctx context.Context, email, password string) (*v1.UserProfile, error) {
	resp, err := s.api.Post(ctx, constraints.PathLogin, v1.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	auth, err := decode[v1.AuthResponse](resp)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, auth)
}

func (s *AuthService) RegisterCompany(ctx context.Context, req v1.RegisterCompanyRequest) (*v1.UserProfile, error) {
	return s.register(ctx, constraints.PathRegisterCompany, req)
}

func (s *AuthService) RegisterEmployee(ctx context.Context, req v1.RegisterEmployeeRequest) (*v1.UserProfile, error) {
	return s.register(ctx, constraints.PathRegisterEmployee, req)
}

// register starts a session when the backend signs the new account in; a
// response without tokens only yields the profile.
func (s *AuthService) register(ctx context.Context, path string, body any) (*v1.UserProfile, error) {
	resp, err := s.api.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	auth, err := decode[v1.AuthResponse](resp)
	if err != nil {
		return nil, err
	}
	if auth.AccessToken == "" {
		return BuildProfile(auth), nil
	}
	return s.startSession(ctx, auth)
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	_, err := s.api.Put(ctx, constraints.PathChangePassword, v1.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	return err
}

// Logout destroys the local session. The backend keeps no session to end.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	logger.Info("logged out")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*v1.UserProfile, error) {
	return s.store.GetUser(ctx)
}

func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.store.IsAuthenticated(ctx)
}

func (s *AuthService) startSession(ctx context.Context, auth v1.AuthResponse) (*v1.UserProfile, error) {
	if auth.AccessToken == "" {
		return nil, ErrMissingToken
	}
	profile := BuildProfile(auth)
	if !profile.HasSession() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUserType, profile.UserType)
	}

	if err := s.store.SaveToken(ctx, auth.AccessToken); err != nil {
		return nil, err
	}
	if auth.RefreshToken != "" {
		if err := s.store.SaveRefreshToken(ctx, auth.RefreshToken); err != nil {
			return nil, err
		}
	}
	if err := s.store.SaveUser(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("session started",
		zap.String("user_id", profile.ID),
		zap.String("user_type", string(profile.UserType)))
	return profile, nil
}

// BuildProfile merges the raw auth user with its company or employee record:
// name and phone come from the nested record and name falls back to email.
func BuildProfile(auth v1.AuthResponse) *v1.UserProfile {
	u := auth.User
	p := &v1.UserProfile{
		ID:         u.ID,
		Email:      u.Email,
		UserType:   u.UserType,
		CompanyID:  u.CompanyID,
		EmployeeID: u.EmployeeID,
	}

	switch u.UserType {
	case constraints.UserTypeCompany:
		company := auth.Company
		if company == nil {
			company = u.Company
		}
		if company != nil {
			p.Name = company.Name
			p.Phone = company.Phone
			p.CompanyData = company
			if p.CompanyID == "" {
				p.CompanyID = company.ID
			}
		}
	case constraints.UserTypeEmployee:
		employee := auth.Employee
		if employee == nil {
			employee = u.Employee
		}
		if employee != nil {
			p.Name = employee.Name
			p.Phone = employee.Phone
			p.EmployeeData = employee
			if p.EmployeeID == "" {
				p.EmployeeID = employee.ID
			}
			if p.CompanyID == "" {
				p.CompanyID = employee.CompanyID
			}
		}
	}

	if p.Name == "" {
		p.Name = p.Email
	}
	return p
}
