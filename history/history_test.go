package history

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/logger"
)

func TestMain(m *testing.M) {
	l := logger.Init("history_test", false, false, io.Discard)
	code := m.Run()
	l.Close()
	os.Exit(code)
}

func TestResultsStore_AppendAndBySession(t *testing.T) {
	dir := t.TempDir()
	rs := NewResultsStore(filepath.Join(dir, "nested"))
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if got, err := rs.BySession("a"); err != nil || len(got) != 0 {
		t.Fatalf("empty history = %v, %v", got, err)
	}
	for i, rec := range []Record{
		{SessionID: "a", CardID: 4, PrizeName: "A", Remaining: 2, RevealedAt: now},
		{SessionID: "b", CardID: 0, PrizeName: "B", Remaining: 0, RevealedAt: now},
		{SessionID: "a", CardID: 1, PrizeName: "B", Remaining: 1, RevealedAt: now},
	} {
		if err := rs.Append(ctx, rec); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	got, err := rs.BySession("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].CardID != 4 || got[1].CardID != 1 {
		t.Fatalf("BySession(a) = %+v", got)
	}
	if !got[0].RevealedAt.Equal(now) {
		t.Errorf("RevealedAt = %v", got[0].RevealedAt)
	}

	// A fresh store over the same dir sees the same ledger.
	again, _ := NewResultsStore(filepath.Join(dir, "nested")).BySession("b")
	if len(again) != 1 || again[0].PrizeName != "B" {
		t.Errorf("reopened BySession(b) = %+v", again)
	}
}

func TestResultsStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "reveal_history.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	rs := NewResultsStore(dir)
	if _, err := rs.BySession("a"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("BySession over corrupt file = %v, want ErrCorrupt", err)
	}
	if err := rs.Append(context.Background(), Record{SessionID: "a", CardID: 1}); err != nil {
		t.Fatalf("Append over corrupt file: %v", err)
	}
	if got, err := rs.BySession("a"); err != nil || len(got) != 1 {
		t.Errorf("after restart = %v, %v", got, err)
	}
	aside, err := filepath.Glob(filepath.Join(dir, "reveal_history.json.corrupt-*"))
	if err != nil || len(aside) != 1 {
		t.Fatalf("moved-aside files = %v, %v", aside, err)
	}
	if data, _ := os.ReadFile(aside[0]); string(data) != "{nope" {
		t.Errorf("moved-aside content = %q", data)
	}
}

func TestResultsStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewResultsStore(t.TempDir()).Append(ctx, Record{}); err == nil {
		t.Error("expected context error")
	}
}
