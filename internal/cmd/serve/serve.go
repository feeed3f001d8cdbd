// Package serve parses serve command flags and runs the live validation
// loop: tracking feed ingestion, arrangement hot reload, and periodic
// win evaluation.
package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/louisbranch/tangram.space/internal/anchor"
	"github.com/louisbranch/tangram.space/internal/arrangement"
	entrypoint "github.com/louisbranch/tangram.space/internal/platform/cmd"
	"github.com/louisbranch/tangram.space/internal/pose"
	"github.com/louisbranch/tangram.space/internal/pose/trackingfeed"
	"github.com/louisbranch/tangram.space/internal/shape"
	"github.com/louisbranch/tangram.space/internal/storage"
	"github.com/louisbranch/tangram.space/internal/storage/sqlite"
	validator "github.com/louisbranch/tangram.space/internal/validate"
	"github.com/louisbranch/tangram.space/internal/win"
)

// Config holds serve command configuration.
type Config struct {
	Arrangement string        `env:"TANGRAM_SPACE_ARRANGEMENT"`
	FeedURL     string        `env:"TANGRAM_SPACE_FEED_URL"`
	DBPath      string        `env:"TANGRAM_SPACE_DB"`
	Interval    time.Duration `env:"TANGRAM_SPACE_EVAL_INTERVAL" envDefault:"250ms"`
	Mirror      bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Arrangement, "arrangement", cfg.Arrangement, "path to the arrangement JSON file")
	fs.StringVar(&cfg.FeedURL, "feed", cfg.FeedURL, "websocket URL of the tracking feed")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for recording attempts")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "evaluation interval")
	fs.BoolVar(&cfg.Mirror, "mirror", false, "treat the tracked world as globally mirrored")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the live validation loop.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Arrangement == "" {
		return errors.New("arrangement path is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServe, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

// evaluator bundles the per-arrangement collaborators that are rebuilt on
// hot reload. The tracking source survives reloads so pose history and
// anchor confidence are not lost.
type evaluator struct {
	arr          arrangement.GridArrangement
	orchestrator *win.Orchestrator
}

func newEvaluator(path string, source *pose.TrackingSource) (*evaluator, error) {
	arr, err := loadArrangement(path)
	if err != nil {
		return nil, err
	}
	v, err := validator.New(arr, shape.DefaultCatalog())
	if err != nil {
		return nil, err
	}
	manager := anchor.NewManager(&anchor.TrackingPolicy{Stats: source})
	orchestrator, err := win.New(source, manager, v)
	if err != nil {
		return nil, err
	}
	return &evaluator{arr: arr, orchestrator: orchestrator}, nil
}

func loadArrangement(path string) (arrangement.GridArrangement, error) {
	f, err := os.Open(path)
	if err != nil {
		return arrangement.GridArrangement{}, fmt.Errorf("open arrangement: %w", err)
	}
	defer f.Close()
	return arrangement.Decode(f)
}

func run(ctx context.Context, cfg Config) error {
	source := pose.NewTrackingSource()
	eval, err := newEvaluator(cfg.Arrangement, source)
	if err != nil {
		return err
	}

	var store *sqlite.Store
	if cfg.DBPath != "" {
		store, err = sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.PutArrangement(ctx, eval.arr); err != nil {
			return err
		}
	}

	if cfg.FeedURL != "" {
		client := trackingfeed.NewClient(cfg.FeedURL, source)
		go func() {
			if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("tracking feed: %v", err)
			}
		}()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(cfg.Arrangement); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	opts := validator.Options{GlobalMirror: cfg.Mirror}
	var last *bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reloaded, err := newEvaluator(cfg.Arrangement, source)
			if err != nil {
				log.Printf("reload %s: %v", cfg.Arrangement, err)
				continue
			}
			eval = reloaded
			last = nil
			log.Printf("reloaded arrangement %q", eval.arr.ID)
			if store != nil {
				if err := store.PutArrangement(ctx, eval.arr); err != nil {
					log.Printf("store arrangement: %v", err)
				}
			}
		case err := <-watcher.Errors:
			log.Printf("watch %s: %v", cfg.Arrangement, err)
		case <-ticker.C:
			res, evaluable, err := eval.orchestrator.Evaluate(ctx, opts)
			if err != nil {
				log.Printf("evaluate: %v", err)
				continue
			}
			if !evaluable {
				last = nil
				continue
			}
			if last != nil && *last == res.Passed {
				continue
			}
			passed := res.Passed
			last = &passed
			log.Printf("arrangement %q passed=%v anchor=%q violated=%d overlaps=%d",
				eval.arr.ID, res.Passed, res.AnchorID, len(res.Violated), len(res.Overlaps))
			if store != nil {
				if err := recordAttempt(ctx, store, eval.arr.ID, res); err != nil {
					log.Printf("record attempt: %v", err)
				}
			}
		}
	}
}

func recordAttempt(ctx context.Context, store *sqlite.Store, arrangementID string, res validator.Result) error {
	violated := make([]string, 0, len(res.Violated))
	for _, v := range res.Violated {
		violated = append(violated, v.ConstraintID)
	}
	return store.RecordAttempt(ctx, storage.Attempt{
		ArrangementID:       arrangementID,
		Passed:              res.Passed,
		AnchorID:            res.AnchorID,
		GlobalRotationIndex: res.GlobalRotationIndex,
		ViolatedConstraints: violated,
		OverlapCount:        len(res.Overlaps),
	})
}
