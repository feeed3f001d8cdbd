package serve

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Interval != 250*time.Millisecond {
		t.Fatalf("interval = %v, want 250ms", cfg.Interval)
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-arrangement", "square.json",
		"-feed", "ws://localhost:9000/poses",
		"-interval", "1s",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Arrangement != "square.json" {
		t.Fatalf("arrangement = %q", cfg.Arrangement)
	}
	if cfg.FeedURL != "ws://localhost:9000/poses" {
		t.Fatalf("feed url = %q", cfg.FeedURL)
	}
	if cfg.Interval != time.Second {
		t.Fatalf("interval = %v, want 1s", cfg.Interval)
	}
}

func TestRunRequiresArrangement(t *testing.T) {
	if err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without an arrangement path")
	}
}

func TestRunRejectsMissingArrangementFile(t *testing.T) {
	cfg := Config{Arrangement: "does-not-exist.json", Interval: time.Second}
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for a missing arrangement file")
	}
}
