// Package output defines the report destination interface and the
// shared plain-text rendering used by the stdout and file destinations.
package output

import (
	"context"
	"time"

	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/compare"
	"github.com/crimson-sun/sawmill/internal/model"
)

// Report is the per-source-file analysis result handed to destinations.
type Report struct {
	Service    string               `json:"service"`
	SourcePath string               `json:"source_path"`
	Generated  time.Time            `json:"generated"`
	Bundle     *model.MetricsBundle `json:"metrics"`
	Cleaning   *cleaner.Report      `json:"cleaning,omitempty"`
	Comparison *compare.Comparison  `json:"comparison,omitempty"`
}

// Output defines the interface for report destinations.
type Output interface {
	Write(ctx context.Context, r Report) error
	Close() error
}
