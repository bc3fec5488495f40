// Package service maps each farm API endpoint to one typed method on top of
// the authenticated client.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"dairyflow/client"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"
)

// Requester is the verb surface of client.Client.
type Requester interface {
	Get(ctx context.Context, path string, opts ...client.RequestOption) (*client.Response, error)
	Post(ctx context.Context, path string, body any, opts ...client.RequestOption) (*client.Response, error)
	Put(ctx context.Context, path string, body any, opts ...client.RequestOption) (*client.Response, error)
	Patch(ctx context.Context, path string, body any, opts ...client.RequestOption) (*client.Response, error)
	Delete(ctx context.Context, path string, opts ...client.RequestOption) (*client.Response, error)
}

// SessionStore is what the auth service needs from the token store.
type SessionStore interface {
	SaveToken(ctx context.Context, token string) error
	SaveRefreshToken(ctx context.Context, token string) error
	GetUser(ctx context.Context) (*v1.UserProfile, error)
	SaveUser(ctx context.Context, profile *v1.UserProfile) error
	ClearAll(ctx context.Context) error
	IsAuthenticated(ctx context.Context) (bool, error)
}

type Services struct {
	Auth       *AuthService
	Cows       *CowService
	Milkings   *MilkingService
	Quality    *QualityService
	Inventory  *InventoryService
	Deliveries *DeliveryService
	Employees  *EmployeeService
	Companies  *CompanyService
	Dashboard  *DashboardService
}

func New(api Requester, store SessionStore) *Services {
	return &Services{
		Auth:       NewAuthService(api, store),
		Cows:       &CowService{resource[v1.Cow]{api: api, path: constraints.PathCows}},
		Milkings:   &MilkingService{resource[v1.Milking]{api: api, path: constraints.PathMilkings}},
		Quality:    &QualityService{resource[v1.QualityTest]{api: api, path: constraints.PathQualityTests}},
		Inventory:  &InventoryService{resource[v1.InventoryItem]{api: api, path: constraints.PathInventory}},
		Deliveries: &DeliveryService{resource[v1.Delivery]{api: api, path: constraints.PathDeliveries}},
		Employees:  &EmployeeService{resource[v1.Employee]{api: api, path: constraints.PathEmployees}},
		Companies:  &CompanyService{api: api},
		Dashboard:  &DashboardService{api: api},
	}
}

// decode unwraps the envelope of resp and unmarshals the payload into T.
func decode[T any](resp *client.Response) (T, error) {
	var out T
	if resp == nil || len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(v1.Unwrap(resp.Body), &out); err != nil {
		return out, fmt.Errorf("service: decode response: %w", err)
	}
	return out, nil
}

// resource is the CRUD surface shared by the farm record endpoints.
type resource[T any] struct {
	api  Requester
	path string
}

func (r resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	resp, err := r.api.Get(ctx, r.path, withQuery(query)...)
	if err != nil {
		return nil, err
	}
	return decode[[]T](resp)
}

func (r resource[T]) Get(ctx context.Context, id string) (*T, error) {
	resp, err := r.api.Get(ctx, r.itemPath(id))
	if err != nil {
		return nil, err
	}
	return decode[*T](resp)
}

func (r resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	resp, err := r.api.Post(ctx, r.path, v)
	if err != nil {
		return nil, err
	}
	return decode[*T](resp)
}

func (r resource[T]) Update(ctx context.Context, id string, v *T) (*T, error) {
	resp, err := r.api.Put(ctx, r.itemPath(id), v)
	if err != nil {
		return nil, err
	}
	return decode[*T](resp)
}

func (r resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.api.Delete(ctx, r.itemPath(id))
	return err
}

func withQuery(q url.Values) []client.RequestOption {
	if len(q) == 0 {
		return nil
	}
	return []client.RequestOption{client.WithQuery(q)}
}
