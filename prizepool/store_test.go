package prizepool

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/google/logger"

	"github.com/Ashenafi-pixel/guaguale/kv"
)

func TestMain(m *testing.M) {
	l := logger.Init("prizepool_test", false, false, io.Discard)
	code := m.Run()
	l.Close()
	os.Exit(code)
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewFileBackend(t.TempDir()), "prize_config:s1")
	if _, ok := s.Load(ctx); ok {
		t.Fatal("empty store should report absent")
	}
	if err := s.Save(ctx, []Prize{{"A", 2}, {"", 4}, {"B", 0}}); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Load(ctx)
	if !ok {
		t.Fatal("Load returned absent after Save")
	}
	if len(got) != 2 || got[0] != (Prize{"A", 2}) || got[1] != (Prize{"B", 0}) {
		t.Errorf("Load = %+v", got)
	}
}

func TestStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if err := NewStore(kv.NewFileBackend(dir), "prize_config:s1").Save(ctx, []Prize{{"X", 1}}); err != nil {
		t.Fatal(err)
	}
	got, ok := NewStore(kv.NewFileBackend(dir), "prize_config:s1").Load(ctx)
	if !ok || len(got) != 1 || got[0].Name != "X" {
		t.Errorf("after reload: %+v %v", got, ok)
	}
}

func TestStore_MalformedIsAbsent(t *testing.T) {
	ctx := context.Background()
	b := kv.NewMemoryBackend()
	_ = b.Put(ctx, "prize_config:s1", []byte("{not json"))
	if _, ok := NewStore(b, "prize_config:s1").Load(ctx); ok {
		t.Error("malformed record should be absent")
	}
}
