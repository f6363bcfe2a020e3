package ast

import (
	"testing"

	"github.com/moneytech/wacc/internal/token"
)

func TestLocationDataAllocatesMonotonically(t *testing.T) {
	ld := NewLocationData()
	first := ld.NextID()
	second := ld.NextID()
	if second != first+1 {
		t.Fatalf("expected monotonically increasing ids, got %d then %d", first, second)
	}
	ld.Save(first, token.Position{Line: 2, Column: 4})
	loc, ok := ld.Locs[first]
	if !ok {
		t.Fatal("expected the saved location to be retrievable")
	}
	if loc != (Location{Line: 2, Column: 4}) {
		t.Errorf("got %+v", loc)
	}
	if ld.Counter() != 2 {
		t.Errorf("Counter() = %d, want 2", ld.Counter())
	}
}

func TestUnwrapPeelsNestedIdentifiedStatements(t *testing.T) {
	inner := Noop{}
	wrapped := IdentifiedStatement{Stmt: IdentifiedStatement{Stmt: inner, ID: 1}, ID: 2}
	got := Unwrap(wrapped)
	if _, ok := got.(Noop); !ok {
		t.Fatalf("expected Unwrap to reach the innermost Noop, got %T", got)
	}
}

func TestUnwrapIsIdentityForPlainStatements(t *testing.T) {
	s := Noop{}
	if Unwrap(s) != Statement(s) {
		t.Error("Unwrap should return a non-wrapped statement unchanged")
	}
}
