// Package iocache persists time series and dashboard specs in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/tschart/internal/contract"
)

// StoreManager manages the series and dashboard stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	series       contract.SeriesStore
	dashboards   contract.DashboardStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetSeriesStore returns the series store.
func (mgr *StoreManager) GetSeriesStore() contract.SeriesStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.series
}

// GetDashboardStore returns the dashboard store.
func (mgr *StoreManager) GetDashboardStore() contract.DashboardStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.dashboards
}
