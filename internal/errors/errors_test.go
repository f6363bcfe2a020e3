package errors

import "testing"

func TestErrorRendering(t *testing.T) {
	e := NewAt(Type, Location{Line: 4, Column: 9}, "expected int but found bool")
	want := "Type Error in statement on line 4, column 9: expected int but found bool"
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorRenderingNoMessage(t *testing.T) {
	e := NewAt(Syntax, Location{Line: 1, Column: 1}, "")
	want := "Syntax Error in statement on line 1, column 1"
	if got := e.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWithLocationDoesNotMutateOriginal(t *testing.T) {
	orig := New(Semantic, "no main function")
	decorated := orig.WithLocation(Location{Line: 5, Column: 2})
	if orig.Loc.Set() {
		t.Fatal("New() should leave Loc unset")
	}
	if !decorated.Loc.Set() {
		t.Fatal("WithLocation should set Loc on the copy")
	}
	if orig == decorated {
		t.Fatal("WithLocation must return a distinct copy")
	}
}

func TestAsCheckerError(t *testing.T) {
	var err error = New(Syntax, "bad token")
	ce, ok := AsCheckerError(err)
	if !ok || ce.CheckKind != Syntax {
		t.Fatalf("expected to recover a Syntax CheckerError, got %v, %v", ce, ok)
	}
	if _, ok := AsCheckerError(nil); ok {
		t.Error("nil should not be recoverable as a CheckerError")
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Syntax, 100},
		{Semantic, 200},
		{Type, 300},
	}
	for _, c := range cases {
		e := New(c.kind, "x")
		if got := ExitCodeFor(e, 100, 200, 300); got != c.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}
