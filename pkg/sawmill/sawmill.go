package sawmill

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/crimson-sun/sawmill/internal/classifier"
	"github.com/crimson-sun/sawmill/internal/cleaner"
	"github.com/crimson-sun/sawmill/internal/ledger"
	"github.com/crimson-sun/sawmill/internal/loader"
	"github.com/crimson-sun/sawmill/internal/metrics"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/roles"
)

// Analyzer loads, cleans, and aggregates exported log files.
type Analyzer struct {
	engine     *metrics.Engine
	classifier *classifier.Classifier
	ledger     *ledger.Ledger
	cleanOpts  cleaner.Options
}

// New creates an Analyzer. Without a backend option, error messages
// that no keyword rule matches resolve to the catch-all category.
func New(opts ...Option) (*Analyzer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend, err := buildBackend(o)
	if err != nil {
		return nil, fmt.Errorf("sawmill: %w", err)
	}

	a := &Analyzer{
		cleanOpts: cleaner.Options{MaxResponse: o.maxResponse},
	}

	var clsOpts []classifier.Option
	if o.ledgerPath != "" {
		led, err := ledger.Open(o.ledgerPath)
		if err != nil {
			return nil, fmt.Errorf("sawmill: %w", err)
		}
		a.ledger = led
		clsOpts = append(clsOpts, classifier.WithLedger(led))
	}
	if o.pacingSet {
		clsOpts = append(clsOpts, classifier.WithPacing(o.pacing))
	}

	a.classifier = classifier.New(classifier.DefaultRules(), backend, clsOpts...)
	a.engine = metrics.NewEngine(a.classifier)
	return a, nil
}

func buildBackend(o options) (classifier.Backend, error) {
	azure := classifier.AzureConfig{
		Endpoint:   o.azureEndpoint,
		APIKey:     o.azureKey,
		Deployment: o.azureDeployment,
		APIVersion: o.azureAPIVersion,
	}
	if azure.Configured() {
		return classifier.NewAzureBackend(azure)
	}
	if o.geminiKey != "" {
		return classifier.NewGeminiBackend(classifier.GeminiConfig{
			APIKey: o.geminiKey,
			Model:  o.geminiModel,
		})
	}
	return nil, nil
}

// AnalyzeFile runs the full analysis flow for one source file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	table, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	bound := roles.Detect(table)
	cleaned, report := cleaner.CleanWith(table, bound, a.cleanOpts)
	if cleaned.NumRows() == 0 {
		return nil, fmt.Errorf("sawmill: %s: no usable rows after cleaning (%d raw rows)", path, report.OriginalRows)
	}

	bundle := a.engine.Compute(ctx, cleaned, bound)
	bundle.Service = deriveService(cleaned, bound, path)
	return resultFromBundle(bundle, cleaned.NumRows()), nil
}

// ClassifyError categorizes a single error message.
func (a *Analyzer) ClassifyError(ctx context.Context, message string) Classification {
	c := a.classifier.ClassifyDetailed(ctx, message)
	return Classification{
		Category:    string(c.Category),
		SubCategory: c.SubCategory,
		Confidence:  c.Confidence,
		Rationale:   c.Rationale,
	}
}

// Close persists the classification ledger, when one is configured.
func (a *Analyzer) Close() error {
	if a.ledger == nil {
		return nil
	}
	return a.ledger.Save()
}

// deriveService picks the most frequent service tag, falling back to
// the file's base name.
func deriveService(t *model.Table, r roles.Roles, path string) string {
	if col := r.Column(roles.Service); col != "" {
		if idx := t.ColumnIndex(col); idx >= 0 {
			counts := map[string]int{}
			best, bestN := "", 0
			for _, row := range t.Rows {
				v := strings.TrimSpace(model.String(row[idx]))
				if v == "" {
					continue
				}
				counts[v]++
				if counts[v] > bestN {
					best, bestN = v, counts[v]
				}
			}
			if best != "" {
				return best
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
