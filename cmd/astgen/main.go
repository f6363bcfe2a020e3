// Command astgen parses the small sum-type DSL internal/ast's .adt
// files are written in and emits the is_X() marker-interface
// boilerplate those sum types need. It is a devtool, not something the
// analysis pipeline calls at runtime — re-run it by hand after editing
// a .adt file and paste the relevant types back into the hand-written
// struct/field definitions in internal/ast.
//
// Adapted from the teacher's companion `tool` module (its own
// `adtGen`), which only handled single-identifier variant aliases
// (`type Name = A of int | B of string;`); this version adds struct-
// bodied variants (`Name of { field Type, ... }`) since WACC's AST
// nodes carry fields, not bare aliases.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/dave/jennifer/jen"
)

type File struct {
	Decls []*Decl `@@*`
}

type Decl struct {
	Name     string     `"type" @Ident "="`
	Variants []*Variant `@@ ("|" @@)*`
	Semi     bool       `@";"`
}

type Variant struct {
	Name   string   `@Ident "of"`
	Struct bool     `( @"{"`
	Fields []*Field `  (@@ ("," @@)*)? "}"`
	Alias  *string  `| @Ident )`
}

type Field struct {
	Name string `@Ident`
	Type string `@Ident`
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: astgen <in.adt> <out.go> <package>")
		os.Exit(1)
	}
	inPath, outPath, pkg := os.Args[1], os.Args[2], os.Args[3]

	raw, err := os.ReadFile(inPath)
	if err != nil {
		panic(err)
	}

	parser := participle.MustBuild[File]()
	file, err := parser.ParseBytes(inPath, stripComments(raw))
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile(outPath, []byte(generate(pkg, file)), 0o644); err != nil {
		panic(err)
	}
}

// stripComments drops lines whose first non-space character is '%'.
// The DSL is small enough that a dedicated comment token in the
// grammar isn't worth it; this runs before the parser ever sees the
// input.
func stripComments(src []byte) []byte {
	lines := strings.Split(string(src), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "%") {
			continue
		}
		kept = append(kept, l)
	}
	return []byte(strings.Join(kept, "\n"))
}

func generate(pkg string, f *File) string {
	out := jen.NewFile(pkg)
	for _, decl := range f.Decls {
		out.Type().Id(decl.Name).Interface(
			jen.Id("is_" + decl.Name).Params(),
		)
		for _, v := range decl.Variants {
			if v.Struct {
				fields := make([]jen.Code, 0, len(v.Fields))
				for _, fld := range v.Fields {
					fields = append(fields, jen.Id(fld.Name).Id(fld.Type))
				}
				out.Type().Id(v.Name).Struct(fields...)
			} else {
				out.Type().Id(v.Name).Id(*v.Alias)
			}
			out.Func().Params(jen.Id("v").Id(v.Name)).Id("is_" + decl.Name).Params().Block()
		}
	}
	return fmt.Sprintf("%#v", out)
}
