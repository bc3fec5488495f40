package service

import (
	"context"
	"net/url"

	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
)

type CowService struct {
	resource[v1.Cow]
}

type MilkingService struct {
	resource[v1.Milking]
}

// ListByCow returns the milking records of a single cow.
func (s *MilkingService) ListByCow(ctx context.Context, cowID string) ([]v1.Milking, error) {
	return s.List(ctx, url.Values{"cowId": {cowID}})
}

type QualityService struct {
	resource[v1.QualityTest]
}

type InventoryService struct {
	resource[v1.InventoryItem]
}

// LowStock returns the items at or below their reorder threshold.
func (s *InventoryService) LowStock(ctx context.Context) ([]v1.InventoryItem, error) {
	return s.List(ctx, url.Values{"lowStock": {"true"}})
}

type DeliveryService struct {
	resource[v1.Delivery]
}

type EmployeeService struct {
	resource[v1.Employee]
}

type CompanyService struct {
	api Requester
}

func (s *CompanyService) Me(ctx context.Context) (*v1.Company, error) {
	resp, err := s.api.Get(ctx, constraints.PathCompanyMe)
	if err != nil {
		return nil, err
	}
	return decode[*v1.Company](resp)
}

func (s *CompanyService) UpdateMe(ctx context.Context, c *v1.Company) (*v1.Company, error) {
	resp, err := s.api.Put(ctx, constraints.PathCompanyMe, c)
	if err != nil {
		return nil, err
	}
	return decode[*v1.Company](resp)
}

// GenerateCode asks the backend for a fresh employee invite code.
func (s *CompanyService) GenerateCode(ctx context.Context) (string, error) {
	resp, err := s.api.Post(ctx, constraints.PathCompanyGenerateCode, nil)
	if err != nil {
		return "", err
	}
	code, err := decode[v1.InviteCode](resp)
	return code.Code, err
}

type DashboardService struct {
	api Requester
}

func (s *DashboardService) Summary(ctx context.Context) (*v1.DashboardSummary, error) {
	resp, err := s.api.Get(ctx, constraints.PathDashboardSummary)
	if err != nil {
		return nil, err
	}
	return decode[*v1.DashboardSummary](resp)
}

// Production returns daily liters for period ("week", "month", "year").
func (s *DashboardService) Production(ctx context.Context, period string) (*v1.Production, error) {
	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	resp, err := s.api.Get(ctx, constraints.PathDashboardProduction, withQuery(q)...)
	if err != nil {
		return nil, err
	}
	return decode[*v1.Production](resp)
}
