package interchange

import (
	"testing"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

func sampleProgram() *ast.AnnotatedProgram {
	locs := ast.NewLocationData()
	id := locs.NextID()
	locs.Save(id, token.Position{Line: 3, Column: 5})

	body := ast.IdentifiedStatement{
		ID: id,
		Stmt: ast.Block{Stmts: []ast.Statement{
			ast.VarDef{
				Decl:  ast.Declaration{Name: "x", Type: ast.TInt{}},
				Value: ast.Lit{Literal: ast.INT(5)},
			},
			ast.Ctrl{Kind: ast.CtrlReturn, Value: ast.Ident{Name: "x"}},
		}},
	}

	return &ast.AnnotatedProgram{
		Locations: locs,
		Definitions: []ast.Definition{
			ast.FunDef{
				Decl: ast.Declaration{
					Name: "main",
					Type: ast.TFun{Ret: ast.TInt{}, Params: nil},
				},
				Body: body,
			},
			ast.TypeDef{
				Name: "Point",
				Fields: []ast.Declaration{
					{Name: "x", Type: ast.TInt{}},
					{Name: "y", Type: ast.TInt{}},
				},
			},
			ast.GlobalDef{
				Decl:  ast.Declaration{Name: "counter", Type: ast.TArray{Elem: ast.TChar{}}},
				Value: ast.Lit{Literal: ast.ARRAY{}},
			},
		},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	prog := sampleProgram()
	data, err := Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v\n%s", err, data)
	}
	if len(got.Definitions) != len(prog.Definitions) {
		t.Fatalf("got %d definitions, want %d", len(got.Definitions), len(prog.Definitions))
	}
	fd, ok := got.Definitions[0].(ast.FunDef)
	if !ok {
		t.Fatalf("expected first definition to round-trip as FunDef, got %T", got.Definitions[0])
	}
	if fd.Decl.Name != "main" {
		t.Errorf("expected main, got %q", fd.Decl.Name)
	}
	fn, ok := fd.Decl.Type.(ast.TFun)
	if !ok {
		t.Fatalf("expected main's type to round-trip as TFun, got %T", fd.Decl.Type)
	}
	if _, ok := fn.Ret.(ast.TInt); !ok {
		t.Errorf("expected main to return int, got %T", fn.Ret)
	}

	is, ok := fd.Body.(ast.IdentifiedStatement)
	if !ok {
		t.Fatalf("expected the body to round-trip wrapped, got %T", fd.Body)
	}
	if loc, ok := got.Locations.Locs[is.ID]; !ok || loc != (ast.Location{Line: 3, Column: 5}) {
		t.Errorf("expected the location table to round-trip, got %+v (ok=%v)", loc, ok)
	}

	td, ok := got.Definitions[1].(ast.TypeDef)
	if !ok || td.Name != "Point" || len(td.Fields) != 2 {
		t.Errorf("expected Point struct def to round-trip, got %+v", got.Definitions[1])
	}

	gd, ok := got.Definitions[2].(ast.GlobalDef)
	if !ok {
		t.Fatalf("expected GlobalDef to round-trip, got %T", got.Definitions[2])
	}
	if _, ok := gd.Decl.Type.(ast.TArray); !ok {
		t.Errorf("expected counter's type to round-trip as TArray, got %T", gd.Decl.Type)
	}
}

func TestMarshalUnmarshalPreservesOperators(t *testing.T) {
	locs := ast.NewLocationData()
	prog := &ast.AnnotatedProgram{
		Locations: locs,
		Definitions: []ast.Definition{
			ast.GlobalDef{
				Decl: ast.Declaration{Name: "n", Type: ast.TInt{}},
				Value: ast.BinApp{
					Op:   token.PLUS,
					Left: ast.Lit{Literal: ast.INT(1)},
					Right: ast.UnApp{
						Op:      token.MINUS,
						Operand: ast.Lit{Literal: ast.INT(2)},
					},
				},
			},
		},
	}
	data, err := Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	gd := got.Definitions[0].(ast.GlobalDef)
	bin, ok := gd.Value.(ast.BinApp)
	if !ok || bin.Op != token.PLUS {
		t.Fatalf("expected PLUS BinApp to round-trip, got %+v", gd.Value)
	}
	un, ok := bin.Right.(ast.UnApp)
	if !ok || un.Op != token.MINUS {
		t.Fatalf("expected MINUS UnApp to round-trip, got %+v", bin.Right)
	}
}
