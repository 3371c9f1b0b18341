package schema

// DashboardSpec is the persisted form of a chart dashboard.
type DashboardSpec struct {
	RootSection *SectionSpec `json:"rootSection"`
}

// TitleSpec is a title with an optional tip.
type TitleSpec struct {
	Content string `json:"content"`
	Tip     string `json:"tip"`
}

// SectionSpec describes a dashboard section.
type SectionSpec struct {
	Title           TitleSpec       `json:"title"`
	Description     string          `json:"description"`
	ChartNavigation ChartNavigation `json:"chartNavigation"`
	Charts          []ChartSpec     `json:"charts"`
	Sections        []SectionSpec   `json:"sections"`
}

// ChartSpec describes a chart. It is also the chart definition evaluated by the core.
type ChartSpec struct {
	Title               TitleSpec     `json:"title"`
	YAxes               []AxisSpec    `json:"yAxes"`
	SeriesGroupBuilders []BuilderSpec `json:"seriesGroupBuilders"`
	SeriesBuilders      []BuilderSpec `json:"seriesBuilders"`
}

// AxisSpec describes a chart y axis.
type AxisSpec struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	UnitName      string           `json:"unitName"`
	UnitOptions   *UnitOptionsSpec `json:"unitOptions"`
	MinInterval   *float64         `json:"minInterval"`
	ValueProvider *RawFunction     `json:"valueProvider"`
}

// UnitOptionsSpec holds options of bytes-like units (Format) or of custom units
// (CustomName, UseMetricSuffix).
type UnitOptionsSpec struct {
	Format          *string `json:"format,omitempty"`
	CustomName      *string `json:"customName,omitempty"`
	UseMetricSuffix *bool   `json:"useMetricSuffix,omitempty"`
}

// BuilderSpec is a tagged series (or series group) builder description.
type BuilderSpec struct {
	BuilderType   string         `json:"builderType"`
	BuilderRecipe map[string]any `json:"builderRecipe"`
}

// DataSourceSpec describes a data source available to a dashboard.
type DataSourceSpec struct {
	OriginName    string         `json:"originName"`
	CollectionRef string         `json:"collectionRef"`
	IsDefault     bool           `json:"isDefault"`
	Schema        map[string]any `json:"schema,omitempty"`
}

// DashboardRecord is a stored dashboard spec.
type DashboardRecord struct {
	Name      string `json:"name"`
	Spec      []byte `json:"-"`
	Version   int    `json:"version"`
	UpdatedAt int64  `json:"updated_at"`
}
