package service

import (
	"context"

	"dairyflow/pkg/constraints"
)

type contextKey string

const operatorKey contextKey = "operator"

// OperatorInfo is the identity carried by a verified access token.
type OperatorInfo struct {
	UserID     string
	Email      string
	UserType   constraints.UserType
	CompanyID  string
	EmployeeID string
}

// IsCompany reports whether the operator signed in as the company owner.
func (o *OperatorInfo) IsCompany() bool {
	return o != nil && o.UserType == constraints.UserTypeCompany
}

func WithOperator(ctx context.Context, op *OperatorInfo) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// GetOperatorInfo retrieves the operator info from the context
func GetOperatorInfo(ctx context.Context) *OperatorInfo {
	val, ok := ctx.Value(operatorKey).(*OperatorInfo)
	if !ok {
		return nil
	}
	return val
}
