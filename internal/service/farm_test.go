package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"dairyflow/internal/repository"
	v1 "dairyflow/pkg/api/v1"

	"github.com/stretchr/testify/require"
)

func TestRecords_CRUD(t *testing.T) {
	ctx := context.Background()
	farm := NewFarmService()

	cow, err := farm.Cows.Create(ctx, "acme", v1.Cow{Tag: "BR-001", Name: "Mimosa", ID: "ignored"})
	require.NoError(t, err)
	require.NotEqual(t, "ignored", cow.ID)
	require.Equal(t, "acme", cow.CompanyID)
	require.Equal(t, "active", cow.Status)

	cow.Status = "dry"
	updated, err := farm.Cows.Update(ctx, "acme", cow.ID, cow)
	require.NoError(t, err)
	require.Equal(t, "dry", updated.Status)

	_, err = farm.Cows.Get(ctx, "other", cow.ID)
	require.ErrorIs(t, err, repository.ErrRecordNotFound)
	_, err = farm.Cows.Update(ctx, "acme", "missing", v1.Cow{})
	require.ErrorIs(t, err, repository.ErrRecordNotFound)

	require.Len(t, farm.Cows.List(ctx, "acme", url.Values{"status": {"dry"}}), 1)
	require.Empty(t, farm.Cows.List(ctx, "acme", url.Values{"status": {"active"}}))

	require.NoError(t, farm.Cows.Delete(ctx, "acme", cow.ID))
	require.Empty(t, farm.Cows.List(ctx, "acme", nil))
}

func TestRecords_Filters(t *testing.T) {
	ctx := context.Background()
	farm := NewFarmService()

	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{CowID: "c1", Date: "2026-03-14", Liters: 12})
	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{CowID: "c2", Date: "2026-03-14", Liters: 9})
	byCow := farm.Milkings.List(ctx, "acme", url.Values{"cowId": {"c1"}})
	require.Len(t, byCow, 1)
	require.Equal(t, 12.0, byCow[0].Liters)

	_, _ = farm.Inventory.Create(ctx, "acme", v1.InventoryItem{Name: "Feed", Quantity: 10, MinStock: 50})
	_, _ = farm.Inventory.Create(ctx, "acme", v1.InventoryItem{Name: "Salt", Quantity: 80, MinStock: 20})
	_, _ = farm.Inventory.Create(ctx, "acme", v1.InventoryItem{Name: "Gloves", Quantity: 0})
	low := farm.Inventory.List(ctx, "acme", url.Values{"lowStock": {"true"}})
	require.Len(t, low, 1)
	require.Equal(t, "Feed", low[0].Name)

	d, _ := farm.Deliveries.Create(ctx, "acme", v1.Delivery{Buyer: "Coop", Liters: 100, PricePerLiter: 0.5})
	require.Equal(t, "pending", d.Status)
	require.Equal(t, 50.0, d.Total)
}

func TestFarmService_InviteCodes(t *testing.T) {
	ctx := context.Background()
	farm := NewFarmService()

	c := farm.CreateCompany(ctx, v1.Company{Name: "Acme"})
	require.Len(t, c.InviteCode, 8)

	id, err := farm.ResolveCode(ctx, " "+c.InviteCode+" ")
	require.NoError(t, err)
	require.Equal(t, c.ID, id)

	code, err := farm.GenerateCode(ctx, c.ID)
	require.NoError(t, err)
	require.NotEqual(t, c.InviteCode, code)

	_, err = farm.ResolveCode(ctx, c.InviteCode)
	require.ErrorIs(t, err, ErrInvalidCompanyCode)

	got, err := farm.Company(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, code, got.InviteCode)

	updated, err := farm.UpdateCompany(ctx, c.ID, v1.Company{Phone: "555", InviteCode: "HIJACK"})
	require.NoError(t, err)
	require.Equal(t, "Acme", updated.Name)
	require.Equal(t, "555", updated.Phone)
	require.Equal(t, code, updated.InviteCode)

	_, err = farm.GenerateCode(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestFarmService_Dashboard(t *testing.T) {
	ctx := context.Background()
	farm := NewFarmService()
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	_, _ = farm.Cows.Create(ctx, "acme", v1.Cow{Tag: "1"})
	_, _ = farm.Cows.Create(ctx, "acme", v1.Cow{Tag: "2", Status: "dry"})
	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{Date: "2026-03-14T06:00:00Z", Liters: 10})
	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{Date: "2026-03-14", Liters: 5})
	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{Date: "2026-03-10", Liters: 7})
	_, _ = farm.Milkings.Create(ctx, "acme", v1.Milking{Date: "2026-02-20", Liters: 100})
	_, _ = farm.Deliveries.Create(ctx, "acme", v1.Delivery{Buyer: "Coop"})
	_, _ = farm.Deliveries.Create(ctx, "acme", v1.Delivery{Buyer: "Coop", Status: "delivered"})
	_, _ = farm.Inventory.Create(ctx, "acme", v1.InventoryItem{Name: "Feed", Quantity: 1, MinStock: 5})

	sum := farm.Summary(ctx, "acme", now)
	require.Equal(t, v1.DashboardSummary{
		TotalCows:         2,
		ActiveCows:        1,
		TodayLiters:       15,
		MonthLiters:       22,
		PendingDeliveries: 1,
		LowStockItems:     1,
		Employees:         0,
	}, sum)

	week, err := farm.Production(ctx, "acme", "", now)
	require.NoError(t, err)
	require.Equal(t, "week", week.Period)
	require.Len(t, week.Points, 7)
	require.Equal(t, "2026-03-08", week.Points[0].Date)
	require.Equal(t, v1.ProductionPoint{Date: "2026-03-14", Liters: 15}, week.Points[6])
	require.Equal(t, 22.0, week.Total)

	year, err := farm.Production(ctx, "acme", "year", now)
	require.NoError(t, err)
	require.Len(t, year.Points, 12)
	require.Equal(t, "2026-03", year.Points[11].Date)
	require.Equal(t, 122.0, year.Total)

	_, err = farm.Production(ctx, "acme", "decade", now)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
