// controlflow.go is C9: path-summary based enumeration of the linear
// statement sequences that can execute through a function body, and the
// three derived checks spec §4.9 names. Per spec §9's design note, paths
// are not materialized as sequences — each path is folded directly into
// a pathSummary (has_return, last_is_return, return_count) to avoid
// exponential blowup on deeply nested control flow.
package semantic

import (
	"github.com/moneytech/wacc/internal/ast"
	checkerrors "github.com/moneytech/wacc/internal/errors"
)

// pathSummary is the abstract representation spec §9 recommends in place
// of a materialized statement sequence.
type pathSummary struct {
	hasReturn     bool // contains at least one Return or Exit
	lastIsReturn  bool // the final (last-executed) leaf on this path is a Return or Exit
	returnCount   int  // number of Return/Exit leaves on this path
	hasReturnStmt bool // contains a Return specifically (not Exit) — for the main check
	hasLeaf       bool // at least one leaf statement has been folded into this path so far
}

// codePaths computes the set of pathSummaries for s, per spec §4.9:
//   - Block right-folds its children, each child extending every path
//     accumulated from its successors.
//   - Cond yields the union of its two branches' paths (no path crosses
//     the branch boundary).
//   - Loop yields its body's paths union the empty "skips the loop" path.
//   - any other statement prepends itself onto every path of whatever
//     follows it.
func codePaths(s ast.Statement) []pathSummary {
	return codePathsOf(ast.Unwrap(s), []pathSummary{emptyPath()})
}

func emptyPath() pathSummary {
	return pathSummary{}
}

// codePathsOf computes the paths through s, each then continuing into
// one of the tails (the paths possible after s finishes).
func codePathsOf(s ast.Statement, tails []pathSummary) []pathSummary {
	switch st := s.(type) {
	case ast.Block:
		acc := tails
		for i := len(st.Stmts) - 1; i >= 0; i-- {
			acc = codePathsOf(ast.Unwrap(st.Stmts[i]), acc)
		}
		return acc

	case ast.Cond:
		var out []pathSummary
		out = append(out, codePathsOf(ast.Unwrap(st.Then), tails)...)
		out = append(out, codePathsOf(ast.Unwrap(st.Else), tails)...)
		return out

	case ast.Loop:
		var out []pathSummary
		out = append(out, codePathsOf(ast.Unwrap(st.Body), tails)...)
		out = append(out, tails...) // the loop may execute zero times
		return out

	case ast.Ctrl:
		isReturnLike := st.Kind == ast.CtrlReturn
		if !isReturnLike {
			return extendAll(tails, false, false)
		}
		return extendAll(tails, true, true)

	case ast.Builtin:
		isExit := st.Op == ast.BuiltinExit
		return extendAll(tails, isExit, false)

	default:
		return extendAll(tails, false, false)
	}
}

// extendAll prepends a leaf (characterized by isReturnOrExit/isReturn)
// onto every tail path. Since tails are accumulated right-to-left, a
// tail that already has a leaf already knows its final (last-executed)
// statement; prepending an earlier statement never changes that. Only an
// empty tail (hasLeaf == false, i.e. this leaf IS the path's end) takes
// its lastIsReturn from the leaf being prepended.
func extendAll(tails []pathSummary, isReturnOrExit, isReturn bool) []pathSummary {
	out := make([]pathSummary, len(tails))
	for i, t := range tails {
		last := t.lastIsReturn
		if !t.hasLeaf {
			last = isReturnOrExit
		}
		out[i] = pathSummary{
			hasReturn:     t.hasReturn || isReturnOrExit,
			lastIsReturn:  last,
			returnCount:   t.returnCount + boolToInt(isReturnOrExit),
			hasReturnStmt: t.hasReturnStmt || isReturn,
			hasLeaf:       true,
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// firstLocatableID does a pre-order search for the first
// IdentifiedStatement id in s, giving the control-flow checks a Location
// to decorate their errors with even though they run outside the
// walker's normal per-statement IdentifiedStatement propagation.
func firstLocatableID(s ast.Statement) (ast.StatementId, bool) {
	switch st := s.(type) {
	case ast.IdentifiedStatement:
		return st.ID, true
	case ast.Block:
		for _, child := range st.Stmts {
			if id, ok := firstLocatableID(child); ok {
				return id, true
			}
		}
	case ast.Cond:
		if id, ok := firstLocatableID(st.Then); ok {
			return id, true
		}
		return firstLocatableID(st.Else)
	case ast.Loop:
		return firstLocatableID(st.Body)
	}
	return 0, false
}

func (w *Walker) locationOf(s ast.Statement) checkerrors.Location {
	if id, ok := firstLocatableID(s); ok {
		if loc, ok := w.locs.Locs[id]; ok {
			return checkerrors.Location{Line: loc.Line, Column: loc.Column}
		}
	}
	return checkerrors.Location{}
}

// checkCodePathsReturn is spec §4.9's return-coverage check: every path
// through fd's body must contain at least one Return or Exit.
func checkCodePathsReturn(fd ast.FunDef) error {
	for _, p := range codePaths(fd.Body) {
		if !p.hasReturn {
			return checkerrors.New(checkerrors.Semantic, "not all code paths return a value")
		}
	}
	return nil
}

// checkUnreachableCode is spec §4.9's coarse unreachable-code check: it
// fires if the last statement on every path is not a return/exit, OR if
// every path (not merely some) contains more than one return/exit. Both
// disjuncts are implemented exactly as specified, including the "every"
// in the second — spec.md documents this as deliberate, not a bug.
func checkUnreachableCode(fd ast.FunDef) error {
	paths := codePaths(fd.Body)
	if len(paths) == 0 {
		return nil
	}
	allEndInReturn := true
	allHaveMultipleReturns := true
	for _, p := range paths {
		if !p.lastIsReturn {
			allEndInReturn = false
		}
		if p.returnCount <= 1 {
			allHaveMultipleReturns = false
		}
	}
	if !allEndInReturn || allHaveMultipleReturns {
		return checkerrors.New(checkerrors.Semantic, "unreachable code after return statement")
	}
	return nil
}

// checkMainDoesNotReturn is spec §4.9's main-cannot-return check: no
// path through main's body may contain a Return (Exit is fine).
func checkMainDoesNotReturn(fd ast.FunDef, isMain bool) error {
	if !isMain {
		return nil
	}
	for _, p := range codePaths(fd.Body) {
		if p.hasReturnStmt {
			return checkerrors.New(checkerrors.Semantic, "cannot return a value from the global scope")
		}
	}
	return nil
}
