package model

import (
	"time"

	"dairyflow/pkg/constraints"
)

// User is an account known to the mock backend. A company account owns a
// company record; an employee account belongs to one.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	UserType     constraints.UserType
	CompanyID    string
	EmployeeID   string
	CreatedAt    time.Time
}
