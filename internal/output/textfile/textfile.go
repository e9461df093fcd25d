// Package textfile writes one plain-text analysis report per service
// into an output directory.
package textfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/sawmill/internal/output"
)

// Output writes each report to {dir}/{service}_metrics_analysis.txt.
type Output struct {
	dir string
}

// New creates a text-report output rooted at dir, creating it if needed.
func New(dir string) (*Output, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("text output: create %s: %w", dir, err)
	}
	return &Output{dir: dir}, nil
}

func (o *Output) Write(_ context.Context, r output.Report) error {
	path := filepath.Join(o.dir, r.Service+"_metrics_analysis.txt")
	if err := os.WriteFile(path, []byte(output.RenderText(r)), 0644); err != nil {
		return fmt.Errorf("text output: write %s: %w", path, err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
