package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"dairyflow/internal/repository"
	v1 "dairyflow/pkg/api/v1"

	"github.com/google/uuid"
)

var (
	ErrInvalidCompanyCode = errors.New("invalid company code")
	ErrInvalidPeriod      = errors.New("period must be one of week, month, year")
)

const dateLayout = "2006-01-02"

// Records is the CRUD surface of one farm record kind. Every operation is
// scoped to the operator's company.
type Records[T any] struct {
	repo *repository.Collection[T]
	// stamp writes the record id and owning company into v.
	stamp func(v *T, id, companyID string)
	// match filters List by query parameters; nil keeps everything.
	match func(v *T, q url.Values) bool
	// prepare fills derived fields before a record is stored.
	prepare func(v *T)
}

func (r *Records[T]) List(ctx context.Context, companyID string, q url.Values) []T {
	all := r.repo.List(ctx, companyID)
	if r.match == nil || len(q) == 0 {
		return all
	}
	out := make([]T, 0, len(all))
	for i := range all {
		if r.match(&all[i], q) {
			out = append(out, all[i])
		}
	}
	return out
}

func (r *Records[T]) Get(ctx context.Context, companyID, id string) (T, error) {
	return r.repo.Get(ctx, companyID, id)
}

func (r *Records[T]) Create(ctx context.Context, companyID string, v T) (T, error) {
	id := uuid.NewString()
	r.stamp(&v, id, companyID)
	if r.prepare != nil {
		r.prepare(&v)
	}
	r.repo.Insert(ctx, companyID, id, v)
	return v, nil
}

func (r *Records[T]) Update(ctx context.Context, companyID, id string, v T) (T, error) {
	r.stamp(&v, id, companyID)
	if r.prepare != nil {
		r.prepare(&v)
	}
	if err := r.repo.Replace(ctx, companyID, id, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (r *Records[T]) Delete(ctx context.Context, companyID, id string) error {
	return r.repo.Delete(ctx, companyID, id)
}

// FarmService owns the mock backend's farm data: companies, their invite
// codes and every record kind the client can manage.
type FarmService struct {
	Cows       *Records[v1.Cow]
	Milkings   *Records[v1.Milking]
	Quality    *Records[v1.QualityTest]
	Inventory  *Records[v1.InventoryItem]
	Deliveries *Records[v1.Delivery]
	Employees  *Records[v1.Employee]

	companies *repository.Collection[v1.Company]

	mu    sync.RWMutex
	codes map[string]string // invite code -> company id
}

func NewFarmService() *FarmService {
	return &FarmService{
		Cows: &Records[v1.Cow]{
			repo:  repository.NewCollection[v1.Cow](),
			stamp: func(v *v1.Cow, id, cid string) { v.ID, v.CompanyID = id, cid },
			match: func(v *v1.Cow, q url.Values) bool {
				return q.Get("status") == "" || q.Get("status") == v.Status
			},
			prepare: func(v *v1.Cow) {
				if v.Status == "" {
					v.Status = "active"
				}
			},
		},
		Milkings: &Records[v1.Milking]{
			repo:  repository.NewCollection[v1.Milking](),
			stamp: func(v *v1.Milking, id, cid string) { v.ID, v.CompanyID = id, cid },
			match: func(v *v1.Milking, q url.Values) bool {
				return q.Get("cowId") == "" || q.Get("cowId") == v.CowID
			},
		},
		Quality: &Records[v1.QualityTest]{
			repo:  repository.NewCollection[v1.QualityTest](),
			stamp: func(v *v1.QualityTest, id, cid string) { v.ID, v.CompanyID = id, cid },
		},
		Inventory: &Records[v1.InventoryItem]{
			repo:  repository.NewCollection[v1.InventoryItem](),
			stamp: func(v *v1.InventoryItem, id, cid string) { v.ID, v.CompanyID = id, cid },
			match: func(v *v1.InventoryItem, q url.Values) bool {
				return q.Get("lowStock") != "true" || v.LowStock()
			},
		},
		Deliveries: &Records[v1.Delivery]{
			repo:  repository.NewCollection[v1.Delivery](),
			stamp: func(v *v1.Delivery, id, cid string) { v.ID, v.CompanyID = id, cid },
			match: func(v *v1.Delivery, q url.Values) bool {
				return q.Get("status") == "" || q.Get("status") == v.Status
			},
			prepare: func(v *v1.Delivery) {
				if v.Status == "" {
					v.Status = "pending"
				}
				if v.Total == 0 {
					v.Total = v.Liters * v.PricePerLiter
				}
			},
		},
		Employees: &Records[v1.Employee]{
			repo:  repository.NewCollection[v1.Employee](),
			stamp: func(v *v1.Employee, id, cid string) { v.ID, v.CompanyID = id, cid },
		},
		companies: repository.NewCollection[v1.Company](),
		codes:     make(map[string]string),
	}
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateCompany stores a new company together with its first invite code.
func (s *FarmService) CreateCompany(ctx context.Context, c v1.Company) v1.Company {
	c.ID = uuid.NewString()
	c.InviteCode = newInviteCode()

	s.mu.Lock()
	s.codes[c.InviteCode] = c.ID
	s.mu.Unlock()

	s.companies.Insert(ctx, c.ID, c.ID, c)
	return c
}

func (s *FarmService) Company(ctx context.Context, companyID string) (v1.Company, error) {
	return s.companies.Get(ctx, companyID, companyID)
}

// UpdateCompany replaces the editable profile fields of a company.
func (s *FarmService) UpdateCompany(ctx context.Context, companyID string, patch v1.Company) (v1.Company, error) {
	current, err := s.Company(ctx, companyID)
	if err != nil {
		return v1.Company{}, err
	}
	patch.ID = current.ID
	patch.InviteCode = current.InviteCode
	if patch.Name == "" {
		patch.Name = current.Name
	}
	if err := s.companies.Replace(ctx, companyID, companyID, patch); err != nil {
		return v1.Company{}, err
	}
	return patch, nil
}

// GenerateCode issues a new invite code for the company. The previous code
// stops working.
func (s *FarmService) GenerateCode(ctx context.Context, companyID string) (string, error) {
	company, err := s.Company(ctx, companyID)
	if err != nil {
		return "", err
	}
	code := newInviteCode()

	s.mu.Lock()
	delete(s.codes, company.InviteCode)
	s.codes[code] = companyID
	s.mu.Unlock()

	company.InviteCode = code
	if err := s.companies.Replace(ctx, companyID, companyID, company); err != nil {
		return "", err
	}
	return code, nil
}

func (s *FarmService) ResolveCode(ctx context.Context, code string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	companyID, ok := s.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", ErrInvalidCompanyCode
	}
	return companyID, nil
}

func (s *FarmService) Summary(ctx context.Context, companyID string, now time.Time) v1.DashboardSummary {
	var out v1.DashboardSummary

	cows := s.Cows.List(ctx, companyID, nil)
	out.TotalCows = len(cows)
	for _, c := range cows {
		if c.Status == "active" {
			out.ActiveCows++
		}
	}

	today := now.Format(dateLayout)
	month := now.Format("2006-01")
	for _, m := range s.Milkings.List(ctx, companyID, nil) {
		day := dayOf(m.Date)
		if day == today {
			out.TodayLiters += m.Liters
		}
		if strings.HasPrefix(day, month) {
			out.MonthLiters += m.Liters
		}
	}

	for _, d := range s.Deliveries.List(ctx, companyID, nil) {
		if d.Status == "pending" {
			out.PendingDeliveries++
		}
	}
	out.LowStockItems = len(s.Inventory.List(ctx, companyID, url.Values{"lowStock": {"true"}}))
	out.Employees = len(s.Employees.List(ctx, companyID, nil))
	return out
}

// Production buckets milking liters by day for week and month, and by
// calendar month for year. Empty buckets are reported as zero.
func (s *FarmService) Production(ctx context.Context, companyID, period string, now time.Time) (v1.Production, error) {
	if period == "" {
		period = "week"
	}

	var keys []string
	var keyOf func(day string) string
	switch period {
	case "week", "month":
		days := 7
		if period == "month" {
			days = 30
		}
		for i := days - 1; i >= 0; i-- {
			keys = append(keys, now.AddDate(0, 0, -i).Format(dateLayout))
		}
		keyOf = func(day string) string { return day }
	case "year":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		for i := 11; i >= 0; i-- {
			keys = append(keys, first.AddDate(0, -i, 0).Format("2006-01"))
		}
		keyOf = func(day string) string {
			if len(day) < 7 {
				return day
			}
			return day[:7]
		}
	default:
		return v1.Production{}, ErrInvalidPeriod
	}

	totals := make(map[string]float64, len(keys))
	for _, m := range s.Milkings.List(ctx, companyID, nil) {
		totals[keyOf(dayOf(m.Date))] += m.Liters
	}

	out := v1.Production{Period: period, Points: make([]v1.ProductionPoint, 0, len(keys))}
	for _, k := range keys {
		out.Points = append(out.Points, v1.ProductionPoint{Date: k, Liters: totals[k]})
		out.Total += totals[k]
	}
	return out, nil
}

// dayOf trims an RFC 3339 timestamp down to its date.
func dayOf(date string) string {
	if len(date) > len(dateLayout) {
		return date[:len(dateLayout)]
	}
	return date
}
