package models

// ActivityEntry is one line of recent activity on the dashboard.
type ActivityEntry struct {
	Action string `json:"action"`
	Item   string `json:"item"`
	User   string `json:"user,omitempty"`
	Time   string `json:"time"`
}

// DashboardSummary aggregates the statistics shown on the dashboard.
type DashboardSummary struct {
	TotalProducts       int             `json:"totalProducts"`
	LowStockItems       int             `json:"lowStockItems"`
	TotalInventoryValue float64         `json:"totalInventoryValue"`
	TotalSales          float64         `json:"totalSales"`
	RecentActivity      []ActivityEntry `json:"recentActivity"`
}
