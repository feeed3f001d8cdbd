package win

import (
	"context"
	"math"
	"testing"

	"github.com/louisbranch/tangram.space/internal/anchor"
	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/geometry"
	"github.com/louisbranch/tangram.space/internal/pose"
	"github.com/louisbranch/tangram.space/internal/shape"
	"github.com/louisbranch/tangram.space/internal/validate"
)

func newOrchestrator(t *testing.T, source pose.Source) *Orchestrator {
	t.Helper()
	v, err := validate.New(arrangement.TwoTriangleSquare(), shape.DefaultCatalog())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	o, err := New(source, anchor.NewManager(anchor.ManualPolicy{}), v)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func TestEvaluateEmptySourceNotEvaluable(t *testing.T) {
	o := newOrchestrator(t, pose.NewManualSource())

	_, evaluable, err := o.Evaluate(context.Background(), validate.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if evaluable {
		t.Fatal("empty source reported evaluable")
	}
}

func TestEvaluateWinThenLoss(t *testing.T) {
	src := pose.NewManualSource()
	o := newOrchestrator(t, src)

	src.SetPose("tri-a", geometry.Pose{})
	src.SetPose("tri-b", geometry.Pose{X: 1, Y: 1, Theta: math.Pi})

	res, evaluable, err := o.Evaluate(context.Background(), validate.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !evaluable || !res.Passed {
		t.Fatalf("result = %+v (evaluable %v), want win", res, evaluable)
	}
	if res.AnchorID != "tri-a" {
		t.Fatalf("anchor = %q, want earliest placed piece", res.AnchorID)
	}

	src.Remove("tri-b")
	res, evaluable, err = o.Evaluate(context.Background(), validate.Options{})
	if err != nil {
		t.Fatalf("evaluate after removal: %v", err)
	}
	if !evaluable || res.Passed {
		t.Fatalf("result = %+v (evaluable %v), want evaluable failure", res, evaluable)
	}
}

func TestEvaluateLatticeIgnoresPoses(t *testing.T) {
	v, err := validate.New(arrangement.AdjacentLatticeRow(), shape.DefaultCatalog())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	o, err := New(pose.NewManualSource(), anchor.NewManager(anchor.ManualPolicy{}), v)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	res, evaluable, err := o.Evaluate(context.Background(), validate.Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !evaluable || !res.Passed {
		t.Fatalf("result = %+v (evaluable %v), want pass with no poses placed", res, evaluable)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	v, err := validate.New(arrangement.TwoTriangleSquare(), shape.DefaultCatalog())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if _, err := New(nil, anchor.NewManager(anchor.ManualPolicy{}), v); err != ErrMissingSource {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
	if _, err := New(pose.NewManualSource(), nil, v); err != ErrMissingAnchors {
		t.Fatalf("err = %v, want ErrMissingAnchors", err)
	}
	if _, err := New(pose.NewManualSource(), anchor.NewManager(anchor.ManualPolicy{}), nil); err != ErrMissingValidator {
		t.Fatalf("err = %v, want ErrMissingValidator", err)
	}
}
