// Package stdout writes analysis reports to standard output.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/crimson-sun/sawmill/internal/output"
)

// Output writes reports to stdout, either as the plain-text report or
// as JSON.
type Output struct {
	enc  *json.Encoder
	text bool
}

// New creates a stdout Output. With asText, reports render as the
// human-readable text report; otherwise as JSON, optionally
// pretty-printed.
func New(asText, pretty bool) *Output {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, text: asText}
}

func (o *Output) Write(_ context.Context, r output.Report) error {
	if o.text {
		if _, err := os.Stdout.WriteString(output.RenderText(r)); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if err := o.enc.Encode(r); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
