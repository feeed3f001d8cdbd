package lattice

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
)

// Placement is one piece on the lattice.
type Placement struct {
	PieceID       string
	Shape         string
	Col           int
	Row           int
	RotationIndex int
}

// Violation is one broken lattice rule.
type Violation struct {
	Code     string   `json:"code"`
	PieceIDs []string `json:"piece_ids"`
}

// CodeCellOccupied is the built-in uniqueness violation: two or more pieces
// on the same cell.
const CodeCellOccupied = "cell-occupied"

// CheckUnique reports every cell occupied by more than one piece.
func CheckUnique(placements []Placement) []Violation {
	byCell := make(map[[2]int][]string)
	for _, p := range placements {
		key := [2]int{p.Col, p.Row}
		byCell[key] = append(byCell[key], p.PieceID)
	}

	var violations []Violation
	for _, ids := range byCell {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		violations = append(violations, Violation{Code: CodeCellOccupied, PieceIDs: ids})
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].PieceIDs[0] < violations[j].PieceIDs[0]
	})
	return violations
}

// ErrMissingCheck indicates the rules script does not define a check
// function.
var ErrMissingCheck = errors.New("lattice rules script must define check(placements)")

// RuleSet holds a compiled external rules script. It owns a Lua state and
// must not be shared across goroutines.
type RuleSet struct {
	state *lua.State
}

// Compile loads a Lua rules script and verifies it defines
// check(placements).
func Compile(script string) (*RuleSet, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.DoString(state, script); err != nil {
		return nil, fmt.Errorf("load lattice rules: %w", err)
	}

	state.Global("check")
	defined := state.IsFunction(-1)
	state.Pop(1)
	if !defined {
		return nil, ErrMissingCheck
	}
	return &RuleSet{state: state}, nil
}

// Check runs the script's check function over the placements and returns
// the violations it reports. A nil or empty return from the script means
// the rules hold.
func (r *RuleSet) Check(placements []Placement) ([]Violation, error) {
	state := r.state
	state.Global("check")
	pushPlacements(state, placements)
	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("run lattice rules: %w", err)
	}
	defer state.Pop(1)

	if state.IsNoneOrNil(-1) {
		return nil, nil
	}
	if !state.IsTable(-1) {
		return nil, fmt.Errorf("lattice rules returned %s, want table", state.TypeOf(-1))
	}

	var violations []Violation
	count := state.RawLength(-1)
	for i := 1; i <= count; i++ {
		state.RawGetInt(-1, i)
		if !state.IsTable(-1) {
			state.Pop(1)
			return nil, fmt.Errorf("lattice rules violation %d is not a table", i)
		}
		violations = append(violations, popViolation(state))
	}
	return violations, nil
}

// popViolation reads the violation table at the top of the stack and pops
// it.
func popViolation(state *lua.State) Violation {
	var v Violation

	state.Field(-1, "code")
	if code, ok := state.ToString(-1); ok {
		v.Code = code
	}
	state.Pop(1)

	state.Field(-1, "pieces")
	if state.IsTable(-1) {
		count := state.RawLength(-1)
		for i := 1; i <= count; i++ {
			state.RawGetInt(-1, i)
			if id, ok := state.ToString(-1); ok {
				v.PieceIDs = append(v.PieceIDs, id)
			}
			state.Pop(1)
		}
	}
	state.Pop(1)

	state.Pop(1)
	return v
}

func pushPlacements(state *lua.State, placements []Placement) {
	state.CreateTable(len(placements), 0)
	for i, p := range placements {
		state.CreateTable(0, 5)
		state.PushString(p.PieceID)
		state.SetField(-2, "id")
		state.PushString(p.Shape)
		state.SetField(-2, "shape")
		state.PushInteger(p.Col)
		state.SetField(-2, "col")
		state.PushInteger(p.Row)
		state.SetField(-2, "row")
		state.PushInteger(p.RotationIndex)
		state.SetField(-2, "rotation")
		state.RawSetInt(-2, i+1)
	}
}
