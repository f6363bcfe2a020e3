// Package symtab is C6, the scoped symbol table: a stack of frames
// mapping identifier to type, with the enter/leave discipline the
// semantic walker (C8) relies on.
package symtab

import (
	"fmt"

	"github.com/moneytech/wacc/internal/ast"
)

// ReturnSentinel is the reserved pseudo-identifier under which a
// function's return type is bound at function entry (spec §3, §4.6).
// The lexer's identifier class already rejects a leading '%' in user
// source, so this name can never collide with a real identifier.
const ReturnSentinel = "%RETURN%"

type frame map[string]ast.Type

// SymbolTable is a stack of frames. It starts with a single global frame
// so top-level names can be inserted before any function body is walked,
// letting bodies forward-reference later definitions (spec §4.6, §4.9).
type SymbolTable struct {
	frames []frame
}

func New() *SymbolTable {
	return &SymbolTable{frames: []frame{make(frame)}}
}

// IncreaseScope pushes a fresh, empty frame.
func (s *SymbolTable) IncreaseScope() {
	s.frames = append(s.frames, make(frame))
}

// DecreaseScope pops the innermost frame. Panics if called with only the
// global frame remaining — a programming error in the caller, not a
// WACC-source error.
func (s *SymbolTable) DecreaseScope() {
	if len(s.frames) <= 1 {
		panic("symtab: DecreaseScope called below the global frame")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports the current number of frames, for invariant checks
// (spec §8 invariant 4).
func (s *SymbolTable) Depth() int {
	return len(s.frames)
}

// AddSymbol inserts name into the innermost frame. Returns an error if
// name is already bound in that same frame (spec §4.6 — duplicates are
// only rejected within one frame; shadowing an outer frame is fine).
func (s *SymbolTable) AddSymbol(decl ast.Declaration) error {
	top := s.frames[len(s.frames)-1]
	if _, exists := top[decl.Name]; exists {
		return fmt.Errorf("%q is already declared in this scope", decl.Name)
	}
	top[decl.Name] = decl.Type
	return nil
}

// Lookup returns the type bound to name in the nearest enclosing frame,
// searching from the innermost frame outward.
func (s *SymbolTable) Lookup(name string) (ast.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Scoped runs fn inside a freshly pushed frame, guaranteeing the frame is
// popped on every exit path — normal return or fn panicking — before
// Scoped itself returns or re-panics. This is the "scoped acquisition"
// idiom spec §4.6/§9 requires: every IncreaseScope paired with a
// DecreaseScope even when fn's check fails.
func (s *SymbolTable) Scoped(fn func() error) error {
	s.IncreaseScope()
	defer s.DecreaseScope()
	return fn()
}
