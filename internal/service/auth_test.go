package service

import (
	"context"
	"testing"
	"time"

	"dairyflow/internal/repository"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
	"dairyflow/tokenstore"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAuth(t *testing.T, rotate bool) (*AuthService, *FarmService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)}
	farm := NewFarmService()
	svc := NewAuthService(repository.NewMemoryUserRepository(), farm, tokenstore.NewMemoryBackend(), AuthConfig{
		SigningKey:          "test-key",
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     7 * 24 * time.Hour,
		RotateRefreshTokens: rotate,
		BcryptCost:          bcrypt.MinCost,
		Now:                 clock.Now,
	})
	return svc, farm, clock
}

func registerAcme(t *testing.T, svc *AuthService) *v1.AuthResponse {
	t.Helper()
	resp, err := svc.RegisterCompany(context.Background(), v1.RegisterCompanyRequest{
		Email:    "owner@acme.com",
		Password: "secret1",
		Name:     "Acme",
		Phone:    "555",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_RegisterCompanyAndLogin(t *testing.T) {
	svc, _, _ := newTestAuth(t, false)
	ctx := context.Background()

	reg := registerAcme(t, svc)
	require.NotEmpty(t, reg.AccessToken)
	require.NotEmpty(t, reg.RefreshToken)
	require.Equal(t, constraints.UserTypeCompany, reg.User.UserType)
	require.NotNil(t, reg.Company)
	require.Equal(t, "Acme", reg.Company.Name)
	require.NotEmpty(t, reg.Company.InviteCode)

	login, err := svc.Login(ctx, v1.LoginRequest{Email: "owner@acme.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)
	require.Equal(t, "555", login.Company.Phone)

	op, err := svc.VerifyAccessToken(login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.Company.ID, op.CompanyID)
	require.True(t, op.IsCompany())

	_, err = svc.Login(ctx, v1.LoginRequest{Email: "owner@acme.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, v1.LoginRequest{Email: "nobody@acme.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.RegisterCompany(ctx, v1.RegisterCompanyRequest{Email: "owner@acme.com", Password: "secret1", Name: "Dup"})
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestAuthService_RegisterEmployee(t *testing.T) {
	svc, farm, _ := newTestAuth(t, false)
	ctx := context.Background()
	reg := registerAcme(t, svc)

	_, err := svc.RegisterEmployee(ctx, v1.RegisterEmployeeRequest{
		Email: "joe@acme.com", Password: "secret1", Name: "Joe", CompanyCode: "NOPE",
	})
	require.ErrorIs(t, err, ErrInvalidCompanyCode)

	resp, err := svc.RegisterEmployee(ctx, v1.RegisterEmployeeRequest{
		Email: "joe@acme.com", Password: "secret1", Name: "Joe", Phone: "777",
		CompanyCode: reg.Company.InviteCode,
	})
	require.NoError(t, err)
	require.Equal(t, constraints.UserTypeEmployee, resp.User.UserType)
	require.Equal(t, reg.Company.ID, resp.User.CompanyID)
	require.NotNil(t, resp.Employee)
	require.Equal(t, "Joe", resp.Employee.Name)
	require.True(t, resp.Employee.Active)

	employees := farm.Employees.List(ctx, reg.Company.ID, nil)
	require.Len(t, employees, 1)
	require.Equal(t, resp.User.EmployeeID, employees[0].ID)
}

func TestAuthService_TokenExpiryAndRefresh(t *testing.T) {
	svc, _, clock := newTestAuth(t, false)
	ctx := context.Background()
	reg := registerAcme(t, svc)

	clock.Advance(16 * time.Minute)
	_, err := svc.VerifyAccessToken(reg.AccessToken)
	require.ErrorIs(t, err, ErrSessionExpired)

	refreshed, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.Empty(t, refreshed.RefreshToken)

	_, err = svc.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)

	// Without rotation the same refresh token keeps working.
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuthService_RefreshRotation(t *testing.T) {
	svc, _, _ := newTestAuth(t, true)
	ctx := context.Background()
	reg := registerAcme(t, svc)

	rotated, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.RefreshToken)
	require.NotEqual(t, reg.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc, _, _ := newTestAuth(t, false)
	reg := registerAcme(t, svc)

	_, err := svc.VerifyAccessToken(reg.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Refresh(context.Background(), reg.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccessToken("not-a-jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)

	other, _, _ := newTestAuth(t, false)
	other.key = []byte("another-key")
	_, err = other.VerifyAccessToken(reg.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _, _ := newTestAuth(t, false)
	ctx := context.Background()
	reg := registerAcme(t, svc)

	err := svc.ChangePassword(ctx, reg.User.ID, v1.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "secret2"})
	require.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, v1.ChangePasswordRequest{
		CurrentPassword: "secret1", NewPassword: "secret2",
	}))

	_, err = svc.Login(ctx, v1.LoginRequest{Email: "owner@acme.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, v1.LoginRequest{Email: "owner@acme.com", Password: "secret2"})
	require.NoError(t, err)
}
