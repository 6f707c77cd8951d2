package utils

import (
	"context"
	"testing"
	"time"
)

func TestFixedWindowScriptCompiles(t *testing.T) {
	// Compile-time smoke test: script should be initialized.
	if fixedWindowIncrScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestIncrFixedWindow_ValidatesArgs(t *testing.T) {
	if _, _, err := IncrFixedWindow(context.Background(), nil, "k", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
