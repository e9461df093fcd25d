package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crimson-sun/sawmill/internal/model"
)

// fakeBackend returns canned responses and counts calls.
type fakeBackend struct {
	response string
	err      error
	calls    int
}

func (f *fakeBackend) Classify(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

// memLedger is an in-memory Ledger for tests.
type memLedger struct {
	entries map[string]model.Classification
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]model.Classification{}}
}

func (m *memLedger) Lookup(msg string) (model.Classification, bool) {
	c, ok := m.entries[msg]
	return c, ok
}

func (m *memLedger) Record(msg string, c model.Classification) {
	m.entries[msg] = c
}

func TestClassifyKeywordHitSkipsBackend(t *testing.T) {
	backend := &fakeBackend{response: "{}"}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.Classify(context.Background(), "Connection timed out after 30s")

	if got != model.CategoryTimeout {
		t.Errorf("got %q, want %q", got, model.CategoryTimeout)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for a keyword hit", backend.calls)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(DefaultRules(), nil, WithPacing(0))
	msg := "upstream returned 504 gateway timeout"

	first := c.Classify(context.Background(), msg)
	for i := 0; i < 5; i++ {
		if got := c.Classify(context.Background(), msg); got != first {
			t.Fatalf("classification diverged: %q vs %q", got, first)
		}
	}
}

func TestClassifyTieBreakOrder(t *testing.T) {
	// "timeout" (first category) and "connection" (second) both match;
	// the first category in table order must win.
	c := New(DefaultRules(), nil, WithPacing(0))

	got := c.Classify(context.Background(), "connection timeout while dialing")

	if got != model.CategoryTimeout {
		t.Errorf("got %q, want first-matching category %q", got, model.CategoryTimeout)
	}
}

func TestClassifyBackendResult(t *testing.T) {
	backend := &fakeBackend{response: `{"PrimaryCategory": "LLM Service Errors", "SubCategory": "Rate limit", "ConfidenceScore": 88, "Rationale": "Provider rejected the call."}`}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.ClassifyDetailed(context.Background(), "zzqx unmatched gibberish")

	if got.Category != model.CategoryLLM {
		t.Errorf("category = %q, want %q", got.Category, model.CategoryLLM)
	}
	if got.SubCategory != "Rate limit" {
		t.Errorf("sub-category = %q", got.SubCategory)
	}
	if got.Confidence != 88 {
		t.Errorf("confidence = %v, want 88", got.Confidence)
	}
}

func TestClassifyStripsMarkdownFences(t *testing.T) {
	backend := &fakeBackend{response: "```json\n{\"PrimaryCategory\": \"Streaming Errors\", \"SubCategory\": \"SSE\", \"ConfidenceScore\": 70, \"Rationale\": \"r\"}\n```"}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.Classify(context.Background(), "zzqx unmatched gibberish")

	if got != model.CategoryStreaming {
		t.Errorf("got %q, want %q", got, model.CategoryStreaming)
	}
}

func TestClassifyMalformedJSONFallsBack(t *testing.T) {
	backend := &fakeBackend{response: "not json"}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.ClassifyDetailed(context.Background(), "zzqx unmatched gibberish")

	if got.Category != model.CategoryUncategorized {
		t.Errorf("category = %q, want catch-all", got.Category)
	}
	if got.SubCategory != jsonParseSubCat {
		t.Errorf("sub-category = %q, want %q", got.SubCategory, jsonParseSubCat)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}

func TestClassifyUnknownLabelFallsBack(t *testing.T) {
	backend := &fakeBackend{response: `{"PrimaryCategory": "Made Up Errors", "SubCategory": "x", "ConfidenceScore": 99, "Rationale": "r"}`}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.ClassifyDetailed(context.Background(), "zzqx unmatched gibberish")

	if got.Category != model.CategoryUncategorized {
		t.Errorf("category = %q, want catch-all", got.Category)
	}
	if got.SubCategory != unknownLabelSubCat {
		t.Errorf("sub-category = %q, want %q", got.SubCategory, unknownLabelSubCat)
	}
}

func TestClassifyBackendErrorFallsBack(t *testing.T) {
	backend := &fakeBackend{err: errors.New("boom")}
	c := New(DefaultRules(), backend, WithPacing(0))

	got := c.ClassifyDetailed(context.Background(), "zzqx unmatched gibberish")

	if got.Category != model.CategoryUncategorized {
		t.Errorf("category = %q, want catch-all", got.Category)
	}
	if got.SubCategory != fallbackSubCat {
		t.Errorf("sub-category = %q, want %q", got.SubCategory, fallbackSubCat)
	}
}

func TestClassifyNilBackendFallsBack(t *testing.T) {
	c := New(DefaultRules(), nil, WithPacing(0))

	got := c.Classify(context.Background(), "zzqx unmatched gibberish")

	if got != model.CategoryUncategorized {
		t.Errorf("got %q, want catch-all", got)
	}
}

func TestClassifyConsultsLedgerBeforeBackend(t *testing.T) {
	led := newMemLedger()
	led.Record("zzqx unmatched gibberish", model.Classification{
		Category:   model.CategoryStreaming,
		Confidence: 90,
	})
	backend := &fakeBackend{response: "{}"}
	c := New(DefaultRules(), backend, WithLedger(led), WithPacing(0))

	got := c.Classify(context.Background(), "zzqx unmatched gibberish")

	if got != model.CategoryStreaming {
		t.Errorf("got %q, want ledger category", got)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times despite ledger hit", backend.calls)
	}
}

func TestClassifyRecordsBackendResultInLedger(t *testing.T) {
	led := newMemLedger()
	backend := &fakeBackend{response: `{"PrimaryCategory": "Streaming Errors", "SubCategory": "s", "ConfidenceScore": 75, "Rationale": "r"}`}
	c := New(DefaultRules(), backend, WithLedger(led), WithPacing(0))

	c.Classify(context.Background(), "zzqx unmatched gibberish")

	if got, ok := led.Lookup("zzqx unmatched gibberish"); !ok || got.Category != model.CategoryStreaming {
		t.Errorf("ledger entry = %v, %v; want recorded streaming category", got, ok)
	}
}

func TestClassifyDoesNotRecordFallbackInLedger(t *testing.T) {
	led := newMemLedger()
	backend := &fakeBackend{err: errors.New("transient")}
	c := New(DefaultRules(), backend, WithLedger(led), WithPacing(0))

	c.Classify(context.Background(), "zzqx unmatched gibberish")

	if _, ok := led.Lookup("zzqx unmatched gibberish"); ok {
		t.Error("transport-error fallback must not be frozen into the ledger")
	}
}

func TestClassifyBatchDeduplicatesAndCounts(t *testing.T) {
	backend := &fakeBackend{response: `{"PrimaryCategory": "Streaming Errors", "SubCategory": "s", "ConfidenceScore": 75, "Rationale": "r"}`}
	c := New(DefaultRules(), backend, WithPacing(0))

	messages := []string{
		"Connection timed out after 30s",
		"Connection timed out after 30s",
		"zzqx unmatched gibberish",
		"zzqx unmatched gibberish",
		"zzqx unmatched gibberish",
	}
	res := c.ClassifyBatch(context.Background(), messages)

	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (one distinct unmatched message)", backend.calls)
	}
	if res.RuleHits != 1 {
		t.Errorf("rule hits = %d, want 1", res.RuleHits)
	}
	if res.BackendCalls != 1 {
		t.Errorf("backend-call counter = %d, want 1", res.BackendCalls)
	}
	if res.Counts[model.CategoryTimeout] != 2 {
		t.Errorf("timeout count = %d, want 2", res.Counts[model.CategoryTimeout])
	}
	if res.Counts[model.CategoryStreaming] != 3 {
		t.Errorf("streaming count = %d, want 3", res.Counts[model.CategoryStreaming])
	}

	total := 0
	for _, n := range res.Counts {
		total += n
	}
	if total != len(messages) {
		t.Errorf("aggregated counts = %d, want %d", total, len(messages))
	}
}

func TestClassifyBatchUsesLedgerForRepeatedRuns(t *testing.T) {
	led := newMemLedger()
	backend := &fakeBackend{response: `{"PrimaryCategory": "Streaming Errors", "SubCategory": "s", "ConfidenceScore": 75, "Rationale": "r"}`}
	c := New(DefaultRules(), backend, WithLedger(led), WithPacing(0))

	messages := []string{"zzqx unmatched gibberish"}
	c.ClassifyBatch(context.Background(), messages)
	res := c.ClassifyBatch(context.Background(), messages)

	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (second run served by ledger)", backend.calls)
	}
	if res.LedgerHits != 1 {
		t.Errorf("ledger hits = %d, want 1", res.LedgerHits)
	}
}

func TestBuildPromptContainsMessageAndCategories(t *testing.T) {
	prompt := BuildPrompt("database exploded")

	if !strings.Contains(prompt, "database exploded") {
		t.Error("prompt missing the message text")
	}
	for _, cat := range model.Categories() {
		if !strings.Contains(prompt, string(cat)) {
			t.Errorf("prompt missing category %q", cat)
		}
	}
}
