package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// Table names for the series store.
const (
	metricsTable = "tschart_metrics"
	pointsTable  = "tschart_points"
)

// SeriesStoreImpl stores time series points and serves them as the "store" data source.
type SeriesStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SeriesStore = &SeriesStoreImpl{} // Compile-time check

// NewSeriesStore initializes and returns a new SeriesStore based on the backend type.
// The schema is brought to the latest migration on open.
func NewSeriesStore(backend schema.DatabaseBackend, connStr string) (contract.SeriesStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled storage
		return &SeriesStoreImpl{backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SeriesStoreImpl{
		db:      db,
		backend: backend,
		connStr: connStr,
	}, nil
}

func (ss *SeriesStoreImpl) disabled() bool {
	return ss.backend == schema.NoneBackend || ss.db == nil
}

func (ss *SeriesStoreImpl) table(name string) string {
	return quoteTableName(name, ss.backend)
}

// FetchSeries returns up to params.PointsCount points of one series, newest first.
// The metric whose resolution matches params.TimeResolution wins; otherwise the
// first listed metric is read.
func (ss *SeriesStoreImpl) FetchSeries(ctx context.Context, params schema.FetchParams, sourceParameters map[string]any) ([]schema.RawPoint, error) {
	points := []schema.RawPoint{}
	if ss.disabled() {
		return points, nil
	}

	collectionRef := stringParam(sourceParameters, "collectionRef")
	seriesName := stringParam(sourceParameters, "timeSeriesName")
	if collectionRef == "" || seriesName == "" {
		return nil, fmt.Errorf("store source parameters need collectionRef and timeSeriesName, got %v", sourceParameters)
	}
	metricNames := stringsParam(sourceParameters, "metricNames")
	if len(metricNames) == 0 || params.PointsCount <= 0 {
		return points, nil
	}

	metricName, err := ss.pickMetric(ctx, collectionRef, seriesName, metricNames, params.TimeResolution)
	if err != nil {
		return nil, err
	}

	args := []any{collectionRef, seriesName, metricName}
	query := fmt.Sprintf(`SELECT point_timestamp, point_value, first_measurement, last_measurement FROM %s
		WHERE collection_ref = %s AND series_name = %s AND metric_name = %s`,
		ss.table(pointsTable), placeholder(ss.backend, 1), placeholder(ss.backend, 2), placeholder(ss.backend, 3))
	if params.LastPointTimestamp != nil {
		args = append(args, *params.LastPointTimestamp)
		query += fmt.Sprintf(" AND point_timestamp <= %s", placeholder(ss.backend, len(args)))
	}
	args = append(args, params.PointsCount)
	query += fmt.Sprintf(" ORDER BY point_timestamp DESC LIMIT %s", placeholder(ss.backend, len(args)))

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of %s/%s: %w", collectionRef, seriesName, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		p, err := scanRawPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// pickMetric chooses which of the metric names to read for the resolution.
func (ss *SeriesStoreImpl) pickMetric(ctx context.Context, collectionRef, seriesName string, metricNames []string, resolution int64) (string, error) {
	query := fmt.Sprintf(`SELECT metric_name, resolution FROM %s WHERE collection_ref = %s AND series_name = %s`,
		ss.table(metricsTable), placeholder(ss.backend, 1), placeholder(ss.backend, 2))
	rows, err := ss.db.QueryContext(ctx, query, collectionRef, seriesName)
	if err != nil {
		return "", fmt.Errorf("failed to query metrics of %s/%s: %w", collectionRef, seriesName, err)
	}
	defer func() { _ = rows.Close() }()

	resolutions := make(map[string]int64)
	for rows.Next() {
		var name string
		var res int64
		if err := rows.Scan(&name, &res); err != nil {
			return "", fmt.Errorf("failed to scan metric: %w", err)
		}
		resolutions[name] = res
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, name := range metricNames {
		if res, ok := resolutions[name]; ok && res == resolution {
			return name, nil
		}
	}
	return metricNames[0], nil
}

// FetchDynamicSeriesConfigs returns one series config per stored series whose
// name starts with timeSeriesNameGenerator.
func (ss *SeriesStoreImpl) FetchDynamicSeriesConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	collectionRef := stringParam(sourceParameters, "collectionRef")
	names, err := ss.seriesNames(ctx, collectionRef, stringParam(sourceParameters, "timeSeriesNameGenerator"))
	if err != nil {
		return nil, err
	}

	metricNames := stringsParam(sourceParameters, "metricNames")
	configs := make([]map[string]any, 0, len(names))
	for _, name := range names {
		configs = append(configs, map[string]any{
			"id":   name,
			"name": name,
			"loadSeriesSourceSpec": map[string]any{
				"externalSourceName": schema.StoreSourceName,
				"externalSourceParameters": map[string]any{
					"collectionRef":  collectionRef,
					"timeSeriesName": name,
					"metricNames":    append([]string{}, metricNames...),
				},
			},
		})
	}
	return configs, nil
}

// FetchDynamicSeriesGroupConfigs returns one group config per stored series whose
// name starts with timeSeriesNameGenerator.
func (ss *SeriesStoreImpl) FetchDynamicSeriesGroupConfigs(ctx context.Context, sourceParameters map[string]any) ([]map[string]any, error) {
	names, err := ss.seriesNames(ctx, stringParam(sourceParameters, "collectionRef"), stringParam(sourceParameters, "timeSeriesNameGenerator"))
	if err != nil {
		return nil, err
	}

	configs := make([]map[string]any, 0, len(names))
	for _, name := range names {
		configs = append(configs, map[string]any{"id": name, "name": name})
	}
	return configs, nil
}

// seriesNames lists the distinct series of a collection having the prefix, sorted.
func (ss *SeriesStoreImpl) seriesNames(ctx context.Context, collectionRef, prefix string) ([]string, error) {
	if ss.disabled() {
		return nil, nil
	}

	// LIKE escaping differs per backend, so the prefix is matched in Go
	query := fmt.Sprintf(`SELECT DISTINCT series_name FROM %s WHERE collection_ref = %s ORDER BY series_name`,
		ss.table(metricsTable), placeholder(ss.backend, 1))
	rows, err := ss.db.QueryContext(ctx, query, collectionRef)
	if err != nil {
		return nil, fmt.Errorf("failed to query series of %s: %w", collectionRef, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan series name: %w", err)
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// Ingest upserts the metrics and points of all batches in one transaction.
func (ss *SeriesStoreImpl) Ingest(ctx context.Context, batches []schema.SeriesBatch) (int, error) {
	for i, b := range batches {
		if err := validateBatch(b); err != nil {
			return 0, fmt.Errorf("batch %d: %w", i, err)
		}
	}
	if ss.disabled() {
		return 0, nil
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	metricStmt, err := tx.PrepareContext(ctx, upsertQuery(ss.backend, metricsTable,
		[]string{"collection_ref", "series_name", "metric_name"}, []string{"resolution"}))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare metric upsert: %w", err)
	}
	defer func() { _ = metricStmt.Close() }()

	pointStmt, err := tx.PrepareContext(ctx, upsertQuery(ss.backend, pointsTable,
		[]string{"collection_ref", "series_name", "metric_name", "point_timestamp"},
		[]string{"point_value", "first_measurement", "last_measurement"}))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare point upsert: %w", err)
	}
	defer func() { _ = pointStmt.Close() }()

	written := 0
	for _, b := range batches {
		if _, err := metricStmt.ExecContext(ctx, b.CollectionRef, b.TimeSeriesName, b.MetricName, b.Resolution); err != nil {
			return 0, fmt.Errorf("failed to upsert metric %s/%s/%s: %w", b.CollectionRef, b.TimeSeriesName, b.MetricName, err)
		}
		for _, p := range b.Points {
			_, err := pointStmt.ExecContext(ctx, b.CollectionRef, b.TimeSeriesName, b.MetricName, p.Timestamp,
				nullFloat(p.Value), nullInt(p.FirstMeasurementTimestamp), nullInt(p.LastMeasurementTimestamp))
			if err != nil {
				return 0, fmt.Errorf("failed to upsert point %d of %s/%s: %w", p.Timestamp, b.CollectionRef, b.TimeSeriesName, err)
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ingest transaction: %w", err)
	}
	return written, nil
}

func validateBatch(b schema.SeriesBatch) error {
	switch {
	case b.CollectionRef == "":
		return errors.New("collectionRef is required")
	case b.TimeSeriesName == "":
		return errors.New("timeSeriesName is required")
	case b.MetricName == "":
		return errors.New("metricName is required")
	case b.Resolution <= 0:
		return fmt.Errorf("resolution must be positive, got %d", b.Resolution)
	}
	return nil
}

// ExportPoints returns every stored point ordered by series and timestamp.
func (ss *SeriesStoreImpl) ExportPoints(ctx context.Context) ([]schema.StoredPoint, error) {
	if ss.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT p.collection_ref, p.series_name, p.metric_name, COALESCE(m.resolution, 0),
			p.point_timestamp, p.point_value, p.first_measurement, p.last_measurement
		FROM %s p LEFT JOIN %s m
			ON m.collection_ref = p.collection_ref AND m.series_name = p.series_name AND m.metric_name = p.metric_name
		ORDER BY p.collection_ref, p.series_name, p.metric_name, p.point_timestamp`,
		ss.table(pointsTable), ss.table(metricsTable))
	rows, err := ss.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []schema.StoredPoint
	for rows.Next() {
		var sp schema.StoredPoint
		var value sql.NullFloat64
		var first, last sql.NullInt64
		if err := rows.Scan(&sp.CollectionRef, &sp.TimeSeriesName, &sp.MetricName, &sp.Resolution,
			&sp.Timestamp, &value, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan stored point: %w", err)
		}
		sp.Value = floatPtr(value)
		sp.FirstMeasurementTimestamp = intPtr(first)
		sp.LastMeasurementTimestamp = intPtr(last)
		result = append(result, sp)
	}
	return result, rows.Err()
}

// Close closes the underlying DB connection.
func (ss *SeriesStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the series store.
func (ss *SeriesStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ss.backend),
		Connected:  ss.db != nil,
		TableSizes: make(map[string]int64),
	}

	if ss.disabled() {
		return status, nil
	}

	seriesQuery := fmt.Sprintf("SELECT COUNT(*) FROM (SELECT DISTINCT collection_ref, series_name FROM %s) s", ss.table(metricsTable))
	if err := ss.db.QueryRow(seriesQuery).Scan(&status.TotalSeries); err != nil {
		return status, fmt.Errorf("failed to get total series: %w", err)
	}

	metricsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", ss.table(metricsTable))
	if err := ss.db.QueryRow(metricsQuery).Scan(&status.TotalMetrics); err != nil {
		return status, fmt.Errorf("failed to get total metrics: %w", err)
	}

	pointsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", ss.table(pointsTable))
	if err := ss.db.QueryRow(pointsQuery).Scan(&status.TotalPoints); err != nil {
		return status, fmt.Errorf("failed to get total points: %w", err)
	}

	status.TableSizes[metricsTable] = int64(status.TotalMetrics)
	status.TableSizes[pointsTable] = int64(status.TotalPoints)

	if status.TotalPoints == 0 {
		return status, nil
	}

	rangeQuery := fmt.Sprintf("SELECT MIN(point_timestamp), MAX(point_timestamp) FROM %s", ss.table(pointsTable))
	var oldest, newest int64
	if err := ss.db.QueryRow(rangeQuery).Scan(&oldest, &newest); err != nil {
		return status, fmt.Errorf("failed to get point time range: %w", err)
	}
	status.OldestPointTime = time.Unix(oldest, 0)
	status.NewestPointTime = time.Unix(newest, 0)

	return status, nil
}

func scanRawPoint(rows *sql.Rows) (schema.RawPoint, error) {
	var p schema.RawPoint
	var value sql.NullFloat64
	var first, last sql.NullInt64
	if err := rows.Scan(&p.Timestamp, &value, &first, &last); err != nil {
		return p, fmt.Errorf("failed to scan point: %w", err)
	}
	p.Value = floatPtr(value)
	p.FirstMeasurementTimestamp = intPtr(first)
	p.LastMeasurementTimestamp = intPtr(last)
	return p, nil
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// stringsParam reads a list of strings that may come straight from JSON.
func stringsParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return schema.Float(v.Float64)
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return schema.Int(v.Int64)
}
