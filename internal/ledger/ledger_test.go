package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/sawmill/internal/model"
)

func TestOpenMissingFile(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("len = %d, want empty", l.Len())
	}
}

func TestRecordLookupSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := model.Classification{
		Category:    model.CategoryTimeout,
		SubCategory: "Read timeout",
		Confidence:  92,
		Rationale:   "Upstream exceeded its deadline.",
	}
	l.Record("Connection timed out after 30s", want)
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Lookup("Connection timed out after 30s")
	if !ok {
		t.Fatal("entry lost across save/reload")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestOpenDropsUnknownLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	raw := `{
  "good": {"category": "Timeout Errors", "confidence": 90},
  "bad": {"category": "Nonsense Errors", "confidence": 90}
}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := l.Lookup("good"); !ok {
		t.Error("valid entry dropped")
	}
	if _, ok := l.Lookup("bad"); ok {
		t.Error("entry with an unknown label survived load")
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected an error for a corrupt ledger file")
	}
}

func TestRecordIgnoresInvalidCategory(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Record("msg", model.Classification{Category: "Nonsense Errors"})
	if l.Len() != 0 {
		t.Errorf("len = %d, invalid label must not be stored", l.Len())
	}
}

func TestSaveSkipsCleanLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean ledger must not be written to disk")
	}
}

func TestSaveClearsDirtyFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Record("msg", model.Classification{Category: model.CategoryTimeout, Confidence: 100})
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := l.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("unchanged ledger was rewritten")
	}
}
