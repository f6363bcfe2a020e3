// Package semantic is C8, the semantic walker, combined with C9, the
// control-flow analyzer. Walker walks an ast.AnnotatedProgram under a
// symtab.SymbolTable, applies typecheck's rules, and decorates any error
// that escapes a statement with that statement's saved Location as it
// propagates back up (spec §4.8, §7).
package semantic

import (
	"fmt"

	"github.com/moneytech/wacc/internal/ast"
	checkerrors "github.com/moneytech/wacc/internal/errors"
	"github.com/moneytech/wacc/internal/symtab"
	"github.com/moneytech/wacc/internal/token"
	"github.com/moneytech/wacc/internal/typecheck"
)

// Walker owns the symbol table for one analysis pass. Independent
// analyses use independent Walkers; there is no shared state (spec §5).
type Walker struct {
	syms   *symtab.SymbolTable
	locs   *ast.LocationData
	strict bool // spec §9 open question: require TBool on conditional tests
}

// New creates a Walker over locs. strictConditionals wires the spec §9
// open-question escape hatch (internal/config.StrictConditionals).
func New(locs *ast.LocationData, strictConditionals bool) *Walker {
	return &Walker{syms: symtab.New(), locs: locs, strict: strictConditionals}
}

func (w *Walker) lookup(name string) (ast.Type, bool) {
	return w.syms.Lookup(name)
}

func semErr(format string, args ...interface{}) *checkerrors.CheckerError {
	return checkerrors.New(checkerrors.Semantic, fmt.Sprintf(format, args...))
}

func typeErr(err error) *checkerrors.CheckerError {
	return checkerrors.New(checkerrors.Type, err.Error())
}

// toCheckerError classifies a raw error from typecheck/symtab into the
// right CheckerError kind. Errors that are already CheckerErrors pass
// through unchanged.
func toCheckerError(err error) *checkerrors.CheckerError {
	if ce, ok := checkerrors.AsCheckerError(err); ok {
		return ce
	}
	if _, ok := err.(*typecheck.TypeError); ok {
		return typeErr(err)
	}
	return semErr("%s", err.Error())
}

// Check runs the full program-level pipeline (spec §4.9's ordering): the
// three control-flow checks over each function (main excluded from the
// first two), then the global frame is populated with every function and
// global signature, then each definition's body is walked. The first
// failure aborts (spec §5, §7).
func Check(prog *ast.AnnotatedProgram, strictConditionals bool) error {
	w := New(prog.Locations, strictConditionals)

	for _, def := range prog.Definitions {
		fd, ok := def.(ast.FunDef)
		if !ok {
			continue
		}
		isMain := fd.Decl.Name == "main"
		if err := w.decorateAt(checkMainDoesNotReturn(fd, isMain), fd.Body); err != nil {
			return err
		}
		if isMain {
			continue
		}
		if err := w.decorateAt(checkCodePathsReturn(fd), fd.Body); err != nil {
			return err
		}
		if err := w.decorateAt(checkUnreachableCode(fd), fd.Body); err != nil {
			return err
		}
	}

	if err := w.populateGlobalFrame(prog.Definitions); err != nil {
		return err
	}

	sawMain := false
	for _, def := range prog.Definitions {
		switch d := def.(type) {
		case ast.FunDef:
			if d.Decl.Name == "main" {
				sawMain = true
			}
			if err := w.walkFunDef(d); err != nil {
				return err
			}
		case ast.GlobalDef:
			if err := w.walkGlobalDef(d); err != nil {
				return err
			}
		case ast.TypeDef:
			// Struct layout is not validated here; see spec §4.8/§9 —
			// left to codegen, same as the teacher's own NewStruct.
		}
	}
	if !sawMain {
		return semErr("no main function")
	}
	return nil
}

func (w *Walker) populateGlobalFrame(defs []ast.Definition) error {
	for _, def := range defs {
		switch d := def.(type) {
		case ast.FunDef:
			fn, _ := d.Decl.Type.(ast.TFun)
			if err := w.syms.AddSymbol(ast.Declaration{
				Name: d.Decl.Name,
				Type: ast.TFun{Ret: fn.Ret, Params: funParams(d)},
			}); err != nil {
				return toCheckerError(err)
			}
		case ast.GlobalDef:
			if err := w.syms.AddSymbol(d.Decl); err != nil {
				return toCheckerError(err)
			}
		}
	}
	return nil
}

// funParams recovers a FunDef's parameter declarations from its declared
// type. The parser records them on Decl.Type via TFun so this is a
// direct field read, not a re-derivation.
func funParams(fd ast.FunDef) []ast.Declaration {
	if fn, ok := fd.Decl.Type.(ast.TFun); ok {
		return fn.Params
	}
	return nil
}

func (w *Walker) walkGlobalDef(d ast.GlobalDef) error {
	vt, err := typecheck.Typeof(d.Value, w.lookup)
	if err != nil {
		return toCheckerError(err)
	}
	if err := typecheck.Require(d.Decl.Type, vt, "global variable initializer"); err != nil {
		return typeErr(err)
	}
	return nil
}

func (w *Walker) walkFunDef(fd ast.FunDef) error {
	fn, _ := fd.Decl.Type.(ast.TFun)
	return w.decorate(w.syms.Scoped(func() error {
		for _, p := range fn.Params {
			if err := w.syms.AddSymbol(p); err != nil {
				return toCheckerError(err)
			}
		}
		if err := w.syms.AddSymbol(ast.Declaration{Name: symtab.ReturnSentinel, Type: fn.Ret}); err != nil {
			return toCheckerError(err)
		}
		return w.walkStatement(fd.Body)
	}))
}

// decorate implements spec §4.8's error-location-decoration-on-
// propagation for the program-level and per-function entry points: if
// err is a *CheckerError with no Location set, and it originated inside
// an IdentifiedStatement boundary, walkStatement has already attached
// one before it gets here. decorate's only remaining job at this level
// is pass-through; it exists so every call site above reads uniformly.
func (w *Walker) decorate(err error) error {
	if err == nil {
		return nil
	}
	return toCheckerError(err)
}

// decorateAt is decorate's counterpart for C9's program-level checks,
// which run outside walkStatement's normal per-IdentifiedStatement
// propagation and so need their Location attached directly from body.
func (w *Walker) decorateAt(err error, body ast.Statement) error {
	if err == nil {
		return nil
	}
	ce := toCheckerError(err)
	if !ce.Loc.Set() {
		ce = ce.WithLocation(w.locationOf(body))
	}
	return ce
}

// walkStatement is C8's per-form dispatch. IdentifiedStatement is the
// sole place a Location gets attached to a propagating error: the
// innermost IdentifiedStatement the error passes through sets the
// Location, and every enclosing one leaves an already-set Location as it
// is (see DESIGN.md).
func (w *Walker) walkStatement(s ast.Statement) error {
	switch st := s.(type) {
	case ast.IdentifiedStatement:
		err := w.walkStatement(st.Stmt)
		if err == nil {
			return nil
		}
		ce := toCheckerError(err)
		if !ce.Loc.Set() {
			if loc, ok := w.locs.Locs[st.ID]; ok {
				ce = ce.WithLocation(checkerrors.Location{Line: loc.Line, Column: loc.Column})
			}
		}
		return ce

	case ast.Noop:
		return nil

	case ast.Ctrl:
		switch st.Kind {
		case ast.CtrlBreak, ast.CtrlContinue:
			return nil
		case ast.CtrlReturn:
			vt, err := typecheck.Typeof(st.Value, w.lookup)
			if err != nil {
				return toCheckerError(err)
			}
			retType, ok := w.lookup(symtab.ReturnSentinel)
			if !ok {
				return semErr("return statement outside a function")
			}
			if err := typecheck.Require(retType, vt, "return value"); err != nil {
				return typeErr(err)
			}
			return nil
		}
		return semErr("unhandled control form")

	case ast.Block:
		return w.syms.Scoped(func() error {
			for _, child := range st.Stmts {
				if err := w.walkStatement(child); err != nil {
					return err
				}
			}
			return nil
		})

	case ast.VarDef:
		vt, err := typecheck.Typeof(st.Value, w.lookup)
		if err != nil {
			return toCheckerError(err)
		}
		if err := typecheck.Require(st.Decl.Type, vt, "variable initializer"); err != nil {
			return typeErr(err)
		}
		// The binding is added only after the initializer has been
		// checked, so `T x = x` cannot resolve to itself (spec §4.8).
		if err := w.syms.AddSymbol(st.Decl); err != nil {
			return toCheckerError(err)
		}
		return nil

	case ast.Cond:
		tt, err := typecheck.Typeof(st.Test, w.lookup)
		if err != nil {
			return toCheckerError(err)
		}
		if w.strict {
			if err := typecheck.Require(ast.TBool{}, tt, "if condition"); err != nil {
				return typeErr(err)
			}
		}
		if err := w.syms.Scoped(func() error { return w.walkStatement(st.Then) }); err != nil {
			return err
		}
		return w.syms.Scoped(func() error { return w.walkStatement(st.Else) })

	case ast.Loop:
		tt, err := typecheck.Typeof(st.Test, w.lookup)
		if err != nil {
			return toCheckerError(err)
		}
		if err := typecheck.Require(ast.TBool{}, tt, "while condition"); err != nil {
			return typeErr(err)
		}
		return w.syms.Scoped(func() error { return w.walkStatement(st.Body) })

	case ast.Builtin:
		return w.walkBuiltin(st)

	case ast.ExpStmt:
		if bin, ok := st.Value.(ast.BinApp); ok && bin.Op == token.ASSIGN {
			return w.walkAssignment(bin)
		}
		_, err := typecheck.Typeof(st.Value, w.lookup)
		if err != nil {
			return toCheckerError(err)
		}
		return nil

	case ast.ExternDecl, ast.InlineAssembly:
		// Not type-checked, per spec §4.8/§9 — handed to codegen as-is.
		return nil

	default:
		return semErr("unhandled statement form %T", s)
	}
}

// walkAssignment checks a reassignment `lhs = rhs` parsed as an ExpStmt
// wrapping a BinApp(ASSIGN, ...) — the grammar has no dedicated
// assignment statement; this is the one place that shape gets meaning.
func (w *Walker) walkAssignment(bin ast.BinApp) error {
	if !isAssignable(bin.Left) {
		return checkerrors.New(checkerrors.Syntax, "the left side of an assignment must be an identifier, array element, or pair element")
	}
	lt, err := typecheck.Typeof(bin.Left, w.lookup)
	if err != nil {
		return toCheckerError(err)
	}
	rt, err := typecheck.Typeof(bin.Right, w.lookup)
	if err != nil {
		return toCheckerError(err)
	}
	if err := typecheck.Require(lt, rt, "assignment"); err != nil {
		return typeErr(err)
	}
	return nil
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case ast.Ident, ast.ArrElem, ast.PairElem:
		return true
	default:
		return false
	}
}

func (w *Walker) walkBuiltin(st ast.Builtin) error {
	argType, err := typecheck.Typeof(st.Arg, w.lookup)
	if err != nil {
		return toCheckerError(err)
	}
	switch st.Op {
	case ast.BuiltinRead:
		if !isAssignable(st.Arg) {
			return checkerrors.New(checkerrors.Syntax, "the argument to 'read' must be an identifier, array element, or pair element")
		}
		return nil
	case ast.BuiltinFree:
		switch argType.(type) {
		case ast.TPair, ast.TArray:
			return nil
		default:
			return typeErr(&typecheck.TypeError{Expected: ast.TPair{Fst: ast.TArb{}, Snd: ast.TArb{}}, Actual: argType, Context: "argument to 'free'"})
		}
	case ast.BuiltinExit:
		if err := typecheck.Require(ast.TInt{}, argType, "argument to 'exit'"); err != nil {
			return typeErr(err)
		}
		return nil
	case ast.BuiltinPrint, ast.BuiltinPrintLn:
		return nil
	default:
		return semErr("unhandled builtin form")
	}
}
