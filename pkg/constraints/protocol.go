package constraints

import "time"

type UserType string

const (
	UserTypeCompany  UserType = "company"
	UserTypeEmployee UserType = "employee"
)

// Valid reports whether t is one of the two session-bearing user types.
func (t UserType) Valid() bool {
	return t == UserTypeCompany || t == UserTypeEmployee
}

// Storage keys for the persisted session.
const (
	StorageKeyPrefix       = "dairyflow:auth:"
	StorageKeyAccessToken  = StorageKeyPrefix + "access_token"
	StorageKeyRefreshToken = StorageKeyPrefix + "refresh_token"
	StorageKeyUser         = StorageKeyPrefix + "user"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 30 * time.Second
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
	ContentTypeJSON     = "application/json"
)

// REST paths relative to the /api base.
const (
	PathLogin            = "/auth/login"
	PathRegisterCompany  = "/auth/register/company"
	PathRegisterEmployee = "/auth/register/employee"
	PathRefresh          = "/auth/refresh"
	PathChangePassword   = "/auth/change-password"

	PathCows         = "/cows"
	PathMilkings     = "/milkings"
	PathQualityTests = "/quality/tests"
	PathInventory    = "/inventory"
	PathDeliveries   = "/deliveries"
	PathEmployees    = "/employees"

	PathCompanyMe           = "/companies/me"
	PathCompanyGenerateCode = "/companies/generate-code"

	PathDashboardSummary    = "/dashboard/summary"
	PathDashboardProduction = "/dashboard/production"
)
