package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateSourceFileReportsFieldDetails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "script.exe")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := ValidateSourceFile(bad, 0)
	if !errors.Is(err, ErrFileValidation) {
		t.Fatalf("err = %v, want file validation", err)
	}
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("no ValidationError in chain: %v", err)
	}
	if vErr.Field != "extension" || vErr.Value != "exe" {
		t.Errorf("detail = %+v", vErr)
	}
}

func TestValidateSourceFileSizeCap(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.pdf")
	if err := os.WriteFile(big, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := ValidateSourceFile(big, 1024)
	if !errors.Is(err, ErrFileValidation) {
		t.Fatalf("err = %v, want file validation", err)
	}
	var vErr ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "size" {
		t.Errorf("size detail missing: %v", err)
	}
}

func TestWrapErrorKeepsChain(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapError(base, "open cache")
	if !errors.Is(wrapped, base) {
		t.Errorf("chain broken: %v", wrapped)
	}
	if !strings.HasPrefix(wrapped.Error(), "open cache: ") {
		t.Errorf("message = %q", wrapped.Error())
	}
	if WrapError(nil, "noop") != nil {
		t.Error("wrapping nil must stay nil")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("unset context returned %q", got)
	}
}

func TestWithTimeoutExpires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("deadline never fired")
	}
}
