package win

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/tangram.space/internal/anchor"
	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/pose"
	"github.com/louisbranch/tangram.space/internal/validate"
)

// Collaborator wiring errors.
var (
	ErrMissingSource    = errors.New("win: pose source is required")
	ErrMissingAnchors   = errors.New("win: anchor manager is required")
	ErrMissingValidator = errors.New("win: validator is required")
)

// Orchestrator coordinates one evaluation: pull poses, resolve the anchor,
// validate. It never blocks and spawns no background work; callers invoke
// Evaluate once per tick or after an edit.
type Orchestrator struct {
	source    pose.Source
	anchors   *anchor.Manager
	validator *validate.Validator
	clock     func() time.Time
}

// New wires an orchestrator from its three collaborators.
func New(source pose.Source, anchors *anchor.Manager, validator *validate.Validator) (*Orchestrator, error) {
	if source == nil {
		return nil, ErrMissingSource
	}
	if anchors == nil {
		return nil, ErrMissingAnchors
	}
	if validator == nil {
		return nil, ErrMissingValidator
	}
	return &Orchestrator{
		source:    source,
		anchors:   anchors,
		validator: validator,
		clock:     time.Now,
	}, nil
}

// Evaluate runs one validation pass. It reports evaluable=false when no
// pieces are present in freeform mode; that is "not yet evaluable", not a
// failed validation, and the result is empty.
func (o *Orchestrator) Evaluate(ctx context.Context, opts validate.Options) (res validate.Result, evaluable bool, err error) {
	arr := o.validator.Arrangement()
	_, span := otel.Tracer("tangram.space/win").Start(ctx, "win.evaluate")
	defer func() {
		span.SetAttributes(
			attribute.String("arrangement.id", arr.ID),
			attribute.Bool("evaluable", evaluable),
			attribute.Bool("passed", res.Passed),
			attribute.String("anchor.id", res.AnchorID),
		)
		span.End()
	}()

	// Lattice arrangements validate authored cells; no poses are involved.
	if arr.Metadata.Mode == arrangement.ModeLattice {
		res, err = o.validator.Evaluate(anchor.Frame{}, opts)
		return res, err == nil, err
	}

	frame, ok := o.anchors.Resolve(o.source, o.clock())
	if !ok {
		return validate.Result{}, false, nil
	}
	res, err = o.validator.Evaluate(frame, opts)
	if err != nil {
		return validate.Result{}, false, err
	}
	return res, true, nil
}
