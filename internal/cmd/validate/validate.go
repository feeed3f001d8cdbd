// Package validate parses validate command flags and runs a one-shot
// arrangement evaluation against a pose snapshot file.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/louisbranch/tangram.space/internal/anchor"
	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/geometry"
	entrypoint "github.com/louisbranch/tangram.space/internal/platform/cmd"
	"github.com/louisbranch/tangram.space/internal/pose"
	"github.com/louisbranch/tangram.space/internal/shape"
	"github.com/louisbranch/tangram.space/internal/storage"
	"github.com/louisbranch/tangram.space/internal/storage/sqlite"
	validator "github.com/louisbranch/tangram.space/internal/validate"
	"github.com/louisbranch/tangram.space/internal/win"
)

// ErrValidationFailed distinguishes a completed evaluation that failed from
// an operational error, so the command can exit non-zero on either without
// conflating them.
var ErrValidationFailed = errors.New("validation failed")

// Config holds validate command configuration.
type Config struct {
	Arrangement   string `env:"TANGRAM_SPACE_ARRANGEMENT"`
	ArrangementID string `env:"TANGRAM_SPACE_ARRANGEMENT_ID"`
	Poses         string `env:"TANGRAM_SPACE_POSES"`
	DBPath        string `env:"TANGRAM_SPACE_DB"`
	Mirror        bool
	Record        bool
}

// PoseRecord is one world pose in a snapshot file.
type PoseRecord struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Snapshot is the pose input file: a world pose per piece id.
type Snapshot struct {
	Poses        map[string]PoseRecord `json:"poses"`
	GlobalMirror bool                  `json:"global_mirror,omitempty"`
}

// Output is the command's JSON result envelope.
type Output struct {
	ArrangementID string           `json:"arrangement_id"`
	Evaluable     bool             `json:"evaluable"`
	Result        validator.Result `json:"result"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Arrangement, "arrangement", cfg.Arrangement, "path to the arrangement JSON file")
	fs.StringVar(&cfg.ArrangementID, "id", cfg.ArrangementID, "arrangement id to load from the database")
	fs.StringVar(&cfg.Poses, "poses", cfg.Poses, "path to the pose snapshot JSON file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for loading arrangements and recording attempts")
	fs.BoolVar(&cfg.Mirror, "mirror", false, "treat the snapshot as globally mirrored")
	fs.BoolVar(&cfg.Record, "record", false, "record the attempt to the database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run evaluates the arrangement once and writes the result JSON to out. It
// returns ErrValidationFailed when the evaluation completes but does not
// pass.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.Arrangement == "" && (cfg.ArrangementID == "" || cfg.DBPath == "") {
		return errors.New("an arrangement path, or a database path with an arrangement id, is required")
	}
	if cfg.Poses == "" {
		return errors.New("pose snapshot path is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceValidate, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	var store *sqlite.Store
	if cfg.DBPath != "" {
		var err error
		store, err = sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	arr, err := loadArrangement(ctx, cfg, store)
	if err != nil {
		return err
	}
	snapshot, err := loadSnapshot(cfg.Poses)
	if err != nil {
		return err
	}

	v, err := validator.New(arr, shape.DefaultCatalog())
	if err != nil {
		return err
	}
	orchestrator, err := win.New(manualSource(snapshot), anchor.NewManager(anchor.ManualPolicy{}), v)
	if err != nil {
		return err
	}

	opts := validator.Options{GlobalMirror: cfg.Mirror || snapshot.GlobalMirror}
	res, evaluable, err := orchestrator.Evaluate(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Output{ArrangementID: arr.ID, Evaluable: evaluable, Result: res}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if cfg.Record {
		if store == nil {
			return errors.New("recording requires a database path")
		}
		if err := recordAttempt(ctx, store, arr, res); err != nil {
			return err
		}
	}
	if evaluable && !res.Passed {
		return ErrValidationFailed
	}
	return nil
}

func loadArrangement(ctx context.Context, cfg Config, store *sqlite.Store) (arrangement.GridArrangement, error) {
	if cfg.Arrangement != "" {
		f, err := os.Open(cfg.Arrangement)
		if err != nil {
			return arrangement.GridArrangement{}, fmt.Errorf("open arrangement: %w", err)
		}
		defer f.Close()
		return arrangement.Decode(f)
	}
	return store.GetArrangement(ctx, cfg.ArrangementID)
}

func loadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open pose snapshot: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode pose snapshot: %w", err)
	}
	return s, nil
}

// manualSource places the snapshot's pieces in id order so anchor selection
// is deterministic for a one-shot evaluation.
func manualSource(s Snapshot) *pose.ManualSource {
	src := pose.NewManualSource()
	ids := make([]string, 0, len(s.Poses))
	for id := range s.Poses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := s.Poses[id]
		src.SetPose(id, geometry.Pose{X: p.X, Y: p.Y, Theta: p.Theta})
	}
	return src
}

func recordAttempt(ctx context.Context, store *sqlite.Store, arr arrangement.GridArrangement, res validator.Result) error {
	if err := store.PutArrangement(ctx, arr); err != nil {
		return err
	}
	violated := make([]string, 0, len(res.Violated))
	for _, v := range res.Violated {
		violated = append(violated, v.ConstraintID)
	}
	return store.RecordAttempt(ctx, storage.Attempt{
		ArrangementID:       arr.ID,
		Passed:              res.Passed,
		AnchorID:            res.AnchorID,
		GlobalRotationIndex: res.GlobalRotationIndex,
		ViolatedConstraints: violated,
		OverlapCount:        len(res.Overlaps),
	})
}
