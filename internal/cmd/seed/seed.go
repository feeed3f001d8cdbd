// Package seed parses seed command flags and loads the built-in sample
// arrangements into local storage or a directory of JSON files.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/louisbranch/tangram.space/internal/arrangement"
	entrypoint "github.com/louisbranch/tangram.space/internal/platform/cmd"
	"github.com/louisbranch/tangram.space/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"TANGRAM_SPACE_DB"`
	Dir    string
	List   bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path to seed")
	fs.StringVar(&cfg.Dir, "dir", "", "directory to export arrangement JSON files to")
	fs.BoolVar(&cfg.List, "list", false, "list sample arrangements")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	samples := arrangement.Samples()

	if cfg.List {
		for _, arr := range samples {
			fmt.Fprintf(out, "%s\t%s\n", arr.ID, arr.Name)
		}
		return nil
	}
	if cfg.DBPath == "" && cfg.Dir == "" {
		return errors.New("either a database path or an export directory is required")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		if cfg.Dir != "" {
			if err := exportFiles(cfg.Dir, samples); err != nil {
				return err
			}
			fmt.Fprintf(out, "exported %d arrangements to %s\n", len(samples), cfg.Dir)
		}
		if cfg.DBPath != "" {
			if err := seedStore(ctx, cfg.DBPath, samples); err != nil {
				return err
			}
			fmt.Fprintf(out, "seeded %d arrangements into %s\n", len(samples), cfg.DBPath)
		}
		return nil
	})
}

func exportFiles(dir string, samples []arrangement.GridArrangement) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	for _, arr := range samples {
		path := filepath.Join(dir, arr.ID+".json")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := arrangement.Encode(f, arr); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}
	return nil
}

func seedStore(ctx context.Context, dbPath string, samples []arrangement.GridArrangement) error {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, arr := range samples {
		if err := store.PutArrangement(ctx, arr); err != nil {
			return err
		}
	}
	return nil
}
