package v1

import "dairyflow/pkg/constraints"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterCompanyRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type RegisterEmployeeRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	CompanyCode string `json:"companyCode" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// AuthUser is the bare user record inside an auth response.
type AuthUser struct {
	ID         string               `json:"id"`
	Email      string               `json:"email"`
	UserType   constraints.UserType `json:"userType"`
	CompanyID  string               `json:"companyId,omitempty"`
	EmployeeID string               `json:"employeeId,omitempty"`
	Company    *Company             `json:"company,omitempty"`
	Employee   *Employee            `json:"employee,omitempty"`
}

// AuthResponse is the payload of login and both register endpoints.
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         AuthUser  `json:"user"`
	Company      *Company  `json:"company,omitempty"`
	Employee     *Employee `json:"employee,omitempty"`
}

// UserProfile is the enriched user persisted alongside the session tokens.
type UserProfile struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	UserType     constraints.UserType `json:"userType"`
	Name         string               `json:"name"`
	Phone        string               `json:"phone,omitempty"`
	CompanyID    string               `json:"companyId,omitempty"`
	EmployeeID   string               `json:"employeeId,omitempty"`
	CompanyData  *Company             `json:"companyData,omitempty"`
	EmployeeData *Employee            `json:"employeeData,omitempty"`
}

// HasSession reports whether the profile belongs to a signed-in user.
func (p *UserProfile) HasSession() bool {
	return p != nil && p.UserType.Valid()
}
