package v1

type Company struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

type Employee struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	Active    bool   `json:"active"`
}

type Cow struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"companyId"`
	Tag       string  `json:"tag"`
	Name      string  `json:"name,omitempty"`
	Breed     string  `json:"breed,omitempty"`
	BirthDate string  `json:"birthDate,omitempty"`
	Status    string  `json:"status,omitempty"` // active, dry, sold
	Weight    float64 `json:"weight,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type Milking struct {
	ID         string  `json:"id"`
	CompanyID  string  `json:"companyId"`
	CowID      string  `json:"cowId"`
	EmployeeID string  `json:"employeeId,omitempty"`
	Date       string  `json:"date"`
	Shift      string  `json:"shift,omitempty"` // morning, afternoon, evening
	Liters     float64 `json:"liters"`
	Notes      string  `json:"notes,omitempty"`
}

type QualityTest struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"companyId"`
	Date         string  `json:"date"`
	Fat          float64 `json:"fat"`
	Protein      float64 `json:"protein"`
	SomaticCells int     `json:"somaticCells"`
	Bacteria     int     `json:"bacteria,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	Result       string  `json:"result,omitempty"` // approved, rejected
	Notes        string  `json:"notes,omitempty"`
}

type InventoryItem struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"companyId"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	MinStock  float64 `json:"minStock,omitempty"`
}

// LowStock reports whether the item has dropped to its reorder threshold.
func (i *InventoryItem) LowStock() bool {
	return i.MinStock > 0 && i.Quantity <= i.MinStock
}

type Delivery struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"companyId"`
	Date          string  `json:"date"`
	Buyer         string  `json:"buyer"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"pricePerLiter,omitempty"`
	Total         float64 `json:"total,omitempty"`
	Status        string  `json:"status,omitempty"` // pending, delivered, cancelled
}

type DashboardSummary struct {
	TotalCows         int     `json:"totalCows"`
	ActiveCows        int     `json:"activeCows"`
	TodayLiters       float64 `json:"todayLiters"`
	MonthLiters       float64 `json:"monthLiters"`
	PendingDeliveries int     `json:"pendingDeliveries"`
	LowStockItems     int     `json:"lowStockItems"`
	Employees         int     `json:"employees"`
}

type ProductionPoint struct {
	Date   string  `json:"date"`
	Liters float64 `json:"liters"`
}

type Production struct {
	Period string            `json:"period"`
	Total  float64           `json:"total"`
	Points []ProductionPoint `json:"points"`
}

type InviteCode struct {
	Code string `json:"code"`
}
