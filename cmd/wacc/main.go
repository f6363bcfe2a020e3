// Command wacc is the CLI driver for the WACC front-end: it wires
// internal/lexer, internal/parser, internal/semantic, internal/config,
// and internal/codegen behind two subcommands, `check` and `tokens`,
// in the spirit of the teacher's own `build`/`init`/`typeinfo` trio.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/moneytech/wacc/internal/codegen"
	"github.com/moneytech/wacc/internal/config"
	checkerrors "github.com/moneytech/wacc/internal/errors"
	"github.com/moneytech/wacc/internal/interchange"
	"github.com/moneytech/wacc/internal/lexer"
	"github.com/moneytech/wacc/internal/parser"
	"github.com/moneytech/wacc/internal/semantic"
	"github.com/moneytech/wacc/internal/token"
)

var log = capnslog.NewPackageLogger("github.com/moneytech/wacc", "cmd/wacc")

func loadConfig(c *cli.Context) (config.Resolved, error) {
	if p := c.String("config"); p != "" {
		return config.Load(p)
	}
	dir := filepath.Dir(c.Args().First())
	return config.Load(filepath.Join(dir, config.DefaultManifestName))
}

func main() {
	capnslog.SetGlobalLogLevel(capnslog.INFO)
	capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))

	app := &cli.App{
		Name:  "wacc",
		Usage: "WACC front-end: lex, parse, and semantically check a source file",
		ExitErrHandler: func(c *cli.Context, err error) {
			if _, ok := checkerrors.AsCheckerError(err); ok {
				return // already printed and os.Exit'd from the Action
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			checkCommand,
			tokensCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(err)
		os.Exit(1)
	}
}

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "lex, parse, and semantically check a WACC source file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "dump-ast", Value: false, Usage: "pretty-print the annotated AST on success"},
		&cli.BoolFlag{Name: "dump-ir", Value: false, Usage: "print the LLVM IR function-signature skeleton on success"},
		&cli.StringFlag{Name: "dump-json", Usage: "write the annotated AST as JSON to the given path on success"},
		&cli.StringFlag{Name: "config", Usage: "path to a .wacc.yml manifest (defaults to one next to <file>)"},
	},
	Action: func(c *cli.Context) error {
		file := c.Args().First()
		if file == "" {
			fmt.Fprintln(os.Stderr, "usage: wacc check <file>")
			os.Exit(2)
		}

		cfg, err := loadConfig(c)
		if err != nil {
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		}

		f, err := os.Open(file)
		if err != nil {
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		}
		defer f.Close()

		log.Infof("lexing and parsing %s", file)
		prog, err := parser.Parse(f)
		if err != nil {
			return exitOnCheckerError(err, cfg)
		}

		log.Infof("semantically checking %s", file)
		if err := semantic.Check(prog, cfg.StrictConditionals); err != nil {
			return exitOnCheckerError(err, cfg)
		}

		fmt.Println("OK")

		if c.Bool("dump-ast") {
			repr.Println(prog)
		}
		if c.Bool("dump-ir") {
			fmt.Println(codegen.Skeleton(prog))
		}
		if out := c.String("dump-json"); out != "" {
			data, err := interchange.Marshal(prog)
			if err != nil {
				tracerr.PrintSourceColor(err)
				os.Exit(1)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				tracerr.PrintSourceColor(err)
				os.Exit(1)
			}
		}
		return nil
	},
}

var tokensCommand = &cli.Command{
	Name:      "tokens",
	Usage:     "dump the token stream of a WACC source file",
	ArgsUsage: "<file>",
	Action: func(c *cli.Context) error {
		file := c.Args().First()
		if file == "" {
			fmt.Fprintln(os.Stderr, "usage: wacc tokens <file>")
			os.Exit(2)
		}
		f, err := os.Open(file)
		if err != nil {
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		}
		defer f.Close()

		toks, err := parser.Tokenize(lexer.New(f))
		if err != nil {
			cfg, cerr := loadConfig(c)
			if cerr != nil {
				tracerr.PrintSourceColor(cerr)
				os.Exit(1)
			}
			return exitOnCheckerError(err, cfg)
		}
		for _, t := range toks {
			fmt.Println(t)
			if t.Kind == token.EOF {
				break
			}
		}
		return nil
	},
}

func exitOnCheckerError(err error, cfg config.Resolved) error {
	ce, ok := checkerrors.AsCheckerError(err)
	if !ok {
		return err
	}
	log.Errorf("%s", ce)
	fmt.Fprintln(os.Stderr, ce.Error())
	os.Exit(checkerrors.ExitCodeFor(ce, cfg.ExitCodes.Syntax, cfg.ExitCodes.Semantic, cfg.ExitCodes.Type))
	return nil
}
