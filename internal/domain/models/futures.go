package models

// FutureQuote is one interest-rate futures row from the upstream rates
// service. Note: no transport (json/http) concerns here.
type FutureQuote struct {
	Name      string
	Last      float64
	Change    float64
	Timestamp int64
}
