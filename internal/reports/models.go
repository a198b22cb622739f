package reports

import (
	"time"

	"github.com/google/uuid"
)

// ChartPoint is one bar of the weekly chart.
type ChartPoint struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
	Over     bool    `json:"over"`
}

// DayRow is one entry of the achievements list.
type DayRow struct {
	Date     string  `json:"date"`
	Meals    int     `json:"meals"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	OnTarget bool    `json:"onTarget"`
}

// HistorySummary is returned by GET /v1/history.
type HistorySummary struct {
	TargetCalories int          `json:"targetCalories"`
	Goal           string       `json:"goal,omitempty"`
	Streak         int          `json:"streak"`
	Chart          []ChartPoint `json:"chart"`
	Recent         []DayRow     `json:"recent"`
}

// Report represents a generated export
type Report struct {
	ID        uuid.UUID
	Format    string // "pdf" or "csv"
	FromDate  string // YYYY-MM-DD
	ToDate    string // YYYY-MM-DD
	ObjectKey string
	SizeBytes int64
	Status    string
	CreatedAt time.Time
}

// CreateReportRequest is the request to create a new report
type CreateReportRequest struct {
	From   string `json:"from"`   // YYYY-MM-DD
	To     string `json:"to"`     // YYYY-MM-DD
	Format string `json:"format"` // "pdf" or "csv"
}

// ReportDTO is the response representation of a report
type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportsResponse is the list response
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady = "ready"
)
