package models

// Requests for curve HTTP endpoints. Defined in domain for consistency and reuse.

type CurveRequest struct {
	Country string `query:"country" json:"country" validate:"required"`
	Method  string `query:"method" json:"method" default:"cubic-spline" validate:"oneof=linear cubic-spline nelson-siegel"`
}

type CurvesRequest struct {
	Method string `query:"method" json:"method" default:"cubic-spline" validate:"oneof=linear cubic-spline nelson-siegel"`
}

// BootstrapRequest carries a sparse curve supplied directly by the caller.
// Absent labels and null values both mean "not observed".
type BootstrapRequest struct {
	Country string              `json:"country" validate:"required"`
	Labels  []string            `json:"labels" validate:"required,min=1"`
	Rates   map[string]*float64 `json:"rates" validate:"required"`
	Method  string              `json:"method" default:"cubic-spline" validate:"oneof=linear cubic-spline nelson-siegel"`
}

type HistoryRequest struct {
	Country string `query:"country" json:"country" validate:"required"`
	From    string `query:"from" json:"from"`
	To      string `query:"to" json:"to"`
	Limit   int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}
