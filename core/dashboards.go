package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/tschart/core/dashboard"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/internal/outwriter"
	"github.com/huangsam/tschart/schema"
)

// ErrDashboardNotFound is returned when no dashboard is saved under a name.
var ErrDashboardNotFound = errors.New("dashboard not found")

// ExecuteDashboardValidate checks the dashboard spec stored at path and prints it normalized.
func ExecuteDashboardValidate(_ context.Context, cfg *contract.Config, path string) error {
	spec, err := loadDashboardSpec(path)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDashboardTree(spec, cfg)
}

// ExecuteDashboardSave validates the spec stored at path and saves its normalized form
// under name, bumping the version of any previous spec.
func ExecuteDashboardSave(_ context.Context, _ *contract.Config, mgr contract.StoreManager, name, path string) error {
	if name == "" {
		return errors.New("dashboard name is required")
	}
	store, err := dashboardStore(mgr)
	if err != nil {
		return err
	}
	spec, err := loadDashboardSpec(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}

	_, version, _, err := store.Get(name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load dashboard %q: %w", name, err)
	}
	if err := store.Set(name, data, version+1, time.Now().Unix()); err != nil {
		return fmt.Errorf("save dashboard %q: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "💾 Saved dashboard %q (version %d)\n", name, version+1)
	return nil
}

// ExecuteDashboardShow prints the dashboard saved under name.
func ExecuteDashboardShow(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, name string) error {
	spec, err := LoadDashboard(mgr, name)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDashboardTree(spec, cfg)
}

// ExecuteDashboardList prints all saved dashboards.
func ExecuteDashboardList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := dashboardStore(mgr)
	if err != nil {
		return err
	}
	records, err := store.List()
	if err != nil {
		return fmt.Errorf("list dashboards: %w", err)
	}
	return outwriter.NewOutWriter().WriteDashboardList(records, cfg)
}

// ExecuteDashboardDelete removes the dashboard saved under name.
func ExecuteDashboardDelete(_ context.Context, _ *contract.Config, mgr contract.StoreManager, name string) error {
	store, err := dashboardStore(mgr)
	if err != nil {
		return err
	}
	if _, _, _, err := store.Get(name); errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrDashboardNotFound, name)
	}
	if err := store.Delete(name); err != nil {
		return fmt.Errorf("delete dashboard %q: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "🗑️  Deleted dashboard %q\n", name)
	return nil
}

// LoadDashboard reads the dashboard saved under name and normalizes it.
func LoadDashboard(mgr contract.StoreManager, name string) (*schema.DashboardSpec, error) {
	store, err := dashboardStore(mgr)
	if err != nil {
		return nil, err
	}
	data, _, _, err := store.Get(name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrDashboardNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load dashboard %q: %w", name, err)
	}
	return dashboard.Normalize(data)
}

func loadDashboardSpec(path string) (*schema.DashboardSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard spec: %w", err)
	}
	return dashboard.Normalize(data)
}

func dashboardStore(mgr contract.StoreManager) (contract.DashboardStore, error) {
	if mgr == nil {
		return nil, errors.New("dashboard store is not configured")
	}
	store := mgr.GetDashboardStore()
	if store == nil {
		return nil, errors.New("dashboard store is not configured")
	}
	return store, nil
}
