package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/xmigraph/pkg/cache"
)

func TestCacheCommands(t *testing.T) {
	home := isolate(t)
	fc, err := cache.NewFileCache(home.cache)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	fc.Set(ctx, "doc:a", []byte(`{}`), time.Hour)
	fc.Set(ctx, "doc:b", []byte(`{}`), time.Hour)

	report := captureReport(t)
	if _, err := runCLI(t, "cache", "stats"); err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !containsAll(report.String(), "Entries", "2") {
		t.Errorf("stats report = %q", report.String())
	}

	if _, err := runCLI(t, "cache", "prune"); err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if s, _ := fc.Stats(); s.Entries != 2 {
		t.Errorf("prune removed live entries: %+v", s)
	}

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if s, _ := fc.Stats(); s.Entries != 0 {
		t.Errorf("entries after clear = %d", s.Entries)
	}
}

func TestCacheCommandsRejectRemoteBackend(t *testing.T) {
	isolate(t)
	t.Setenv("XMIGRAPH_CACHE", "redis")
	if _, err := runCLI(t, "cache", "clear"); err == nil {
		t.Error("cache clear should refuse a non-file backend")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
