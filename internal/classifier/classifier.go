// Package classifier assigns error messages to a fixed category taxonomy
// using two tiers: a deterministic keyword table, then a remote
// language-model backend for messages no rule matches. Classification
// never fails: any backend or parse problem resolves to the catch-all
// category.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Backend is the remote classification tier: one blocking call that takes
// the rendered prompt and returns raw text expected to contain a single
// JSON object.
type Backend interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Ledger is an optional message→category lookup recorded by an earlier
// run. It is consulted after the keyword tier and before the backend, so
// repeated analysis of the same data neither re-spends backend budget nor
// risks drift from a nondeterministic backend.
type Ledger interface {
	Lookup(message string) (model.Classification, bool)
	Record(message string, c model.Classification)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLedger attaches a cross-run classification ledger.
func WithLedger(l Ledger) Option {
	return func(c *Classifier) { c.ledger = l }
}

// WithPacing sets the delay inserted after every tenth backend call in
// batch mode. Default 100ms; zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(c *Classifier) { c.pace = d }
}

const (
	defaultPacing      = 100 * time.Millisecond
	pacingInterval     = 10
	fallbackSubCat     = "LLM Processing Error"
	jsonParseSubCat    = "JSON parse error"
	unknownLabelSubCat = "Invalid category returned"
)

// Classifier is the two-tier categorizer. The rule table is fixed at
// construction and never mutated, so keyword-tier results are
// reproducible across runs.
type Classifier struct {
	rules   []Rule
	backend Backend
	ledger  Ledger
	pace    time.Duration
}

// New creates a Classifier. backend may be nil, in which case keyword
// misses resolve straight to the fallback result.
func New(rules []Rule, backend Backend, opts ...Option) *Classifier {
	c := &Classifier{rules: rules, backend: backend, pace: defaultPacing}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the category for one message.
func (c *Classifier) Classify(ctx context.Context, message string) model.ErrorCategory {
	return c.ClassifyDetailed(ctx, message).Category
}

// ClassifyDetailed returns the rich classification result. Keyword and
// ledger hits synthesize the advisory fields; only backend results carry
// a model-provided sub-category and rationale.
func (c *Classifier) ClassifyDetailed(ctx context.Context, message string) model.Classification {
	if cat, keyword, ok := c.matchRules(message); ok {
		return model.Classification{
			Category:    cat,
			SubCategory: "Keyword Rule",
			Confidence:  100,
			Rationale:   fmt.Sprintf("Matched keyword %q.", keyword),
		}
	}
	if c.ledger != nil {
		if prev, ok := c.ledger.Lookup(message); ok {
			return prev
		}
	}
	return c.classifyRemote(ctx, message)
}

// matchRules runs the keyword tier. Categories are tested in table order
// and the first match wins; that ordering is the tie-break policy.
func (c *Classifier) matchRules(message string) (model.ErrorCategory, string, bool) {
	lower := strings.ToLower(message)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category, kw, true
			}
		}
	}
	return "", "", false
}

func (c *Classifier) classifyRemote(ctx context.Context, message string) model.Classification {
	if c.backend == nil {
		return fallbackResult("no classification backend configured")
	}

	raw, err := c.backend.Classify(ctx, BuildPrompt(message))
	if err != nil {
		slog.Warn("classification backend call failed", "error", err)
		return fallbackResult(err.Error())
	}

	result, err := parseResponse(raw)
	if err != nil {
		slog.Warn("classification response rejected", "error", err)
		return result
	}

	if c.ledger != nil {
		c.ledger.Record(message, result)
	}
	return result
}

// backendResponse is the JSON object the prompt demands.
type backendResponse struct {
	PrimaryCategory string  `json:"PrimaryCategory"`
	SubCategory     string  `json:"SubCategory"`
	ConfidenceScore float64 `json:"ConfidenceScore"`
	Rationale       string  `json:"Rationale"`
}

// parseResponse strips optional Markdown fences, parses the JSON object,
// and validates the returned label against the fixed set. On any failure
// it returns the fallback result together with the reason.
func parseResponse(raw string) (model.Classification, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp backendResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		r := fallbackResult("JSON parse error")
		r.SubCategory = jsonParseSubCat
		return r, fmt.Errorf("parse backend response: %w", err)
	}
	if !model.ValidCategory(resp.PrimaryCategory) {
		r := fallbackResult(fmt.Sprintf("unexpected category %q", resp.PrimaryCategory))
		r.SubCategory = unknownLabelSubCat
		return r, fmt.Errorf("unknown category label %q", resp.PrimaryCategory)
	}

	confidence := resp.ConfidenceScore
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	sub := resp.SubCategory
	if sub == "" {
		sub = "Unknown"
	}
	rationale := resp.Rationale
	if rationale == "" {
		rationale = "No rationale provided"
	}
	return model.Classification{
		Category:    model.ErrorCategory(resp.PrimaryCategory),
		SubCategory: sub,
		Confidence:  confidence,
		Rationale:   rationale,
	}, nil
}

func fallbackResult(reason string) model.Classification {
	if len(reason) > 100 {
		reason = reason[:100]
	}
	return model.Classification{
		Category:    model.CategoryUncategorized,
		SubCategory: fallbackSubCat,
		Confidence:  0,
		Rationale:   "Failed to classify remotely: " + reason,
	}
}

// BatchResult aggregates a batch classification pass.
type BatchResult struct {
	// Counts sums occurrence counts per resolved category.
	Counts map[model.ErrorCategory]int
	// PerMessage maps each distinct message to its category.
	PerMessage map[string]model.ErrorCategory
	// Tier accounting: how many distinct messages each tier resolved.
	RuleHits     int
	LedgerHits   int
	BackendCalls int
}

// ClassifyBatch categorizes a collection of messages. Duplicates are
// collapsed first so each distinct message is classified exactly once,
// then the resolved category is credited with every occurrence. A pacing
// delay is inserted after every tenth backend call to respect the remote
// rate limit.
func (c *Classifier) ClassifyBatch(ctx context.Context, messages []string) BatchResult {
	res := BatchResult{
		Counts:     map[model.ErrorCategory]int{},
		PerMessage: map[string]model.ErrorCategory{},
	}

	occurrences := map[string]int{}
	var unique []string
	for _, m := range messages {
		if occurrences[m] == 0 {
			unique = append(unique, m)
		}
		occurrences[m]++
	}

	for _, msg := range unique {
		var cat model.ErrorCategory
		if hit, kw, ok := c.matchRules(msg); ok {
			cat = hit
			res.RuleHits++
			if c.ledger != nil {
				c.ledger.Record(msg, model.Classification{
					Category:    cat,
					SubCategory: "Keyword Rule",
					Confidence:  100,
					Rationale:   fmt.Sprintf("Matched keyword %q.", kw),
				})
			}
		} else if c.ledger != nil && c.lookupLedger(msg, &cat) {
			res.LedgerHits++
		} else {
			cat = c.classifyRemote(ctx, msg).Category
			res.BackendCalls++
			if c.pace > 0 && res.BackendCalls%pacingInterval == 0 {
				sleepContext(ctx, c.pace)
			}
		}
		res.PerMessage[msg] = cat
		res.Counts[cat] += occurrences[msg]
	}

	slog.Info("batch classification complete",
		"unique_messages", len(unique),
		"rule_hits", res.RuleHits,
		"ledger_hits", res.LedgerHits,
		"backend_calls", res.BackendCalls,
	)
	return res
}

func (c *Classifier) lookupLedger(msg string, out *model.ErrorCategory) bool {
	prev, ok := c.ledger.Lookup(msg)
	if ok {
		*out = prev.Category
	}
	return ok
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
