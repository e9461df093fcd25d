package async

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/crimson-sun/sawmill/internal/output"
)

// recorder collects delivered reports behind a mutex.
type recorder struct {
	mu       sync.Mutex
	services []string
	writeErr error
	closed   bool
}

func (r *recorder) Write(_ context.Context, rep output.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = append(r.services, rep.Service)
	return r.writeErr
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestCloseDrainsPendingReports(t *testing.T) {
	inner := &recorder{}
	a := New(inner)

	for _, svc := range []string{"api", "web", "batch"} {
		if err := a.Write(context.Background(), output.Report{Service: svc}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.services) != 3 {
		t.Errorf("delivered = %d, want all 3 buffered reports", len(inner.services))
	}
	if inner.services[0] != "api" || inner.services[2] != "batch" {
		t.Errorf("delivery order = %v", inner.services)
	}
	if !inner.closed {
		t.Error("inner output not closed")
	}
}

func TestWriteErrorsGoToCallback(t *testing.T) {
	inner := &recorder{writeErr: errors.New("sink down")}
	var mu sync.Mutex
	var seen []error
	a := New(inner, WithOnError(func(err error) {
		mu.Lock()
		seen = append(seen, err)
		mu.Unlock()
	}))

	if err := a.Write(context.Background(), output.Report{Service: "api"}); err != nil {
		t.Fatalf("Write must not surface inner errors, got %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Errorf("error callbacks = %d, want 1", len(seen))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a := New(&recorder{})
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
