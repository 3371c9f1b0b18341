package schema

import "time"

// StoreStatus represents the status of the series store.
type StoreStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalSeries     int              `json:"total_series"`
	TotalMetrics    int              `json:"total_metrics"`
	TotalPoints     int              `json:"total_points"`
	OldestPointTime time.Time        `json:"oldest_point_time"`
	NewestPointTime time.Time        `json:"newest_point_time"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// DashboardStoreStatus represents the status of the dashboard store.
type DashboardStoreStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalDashboards int       `json:"total_dashboards"`
	LastUpdateTime  time.Time `json:"last_update_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}
