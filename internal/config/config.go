// Package config is the ambient configuration layer: the three exit
// codes spec §6 says the host CLI (not the core) owns, plus
// StrictConditionals, the escape hatch for the §9 open question over
// whether a conditional's test must be TBool.
//
// Grounded on the teacher's own tawaModule: a small struct marshaled
// to/from a YAML manifest file (there, "Tawa Module Information"
// naming a package; here, exit-code and strictness settings).
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultManifestName is the file cmd/wacc looks for in the directory of
// the source file when no --config flag is given.
const DefaultManifestName = ".wacc.yml"

// Config is the manifest shape. Zero values fall back to Defaults.
type Config struct {
	SyntaxExitCode     *int  `yaml:"syntaxExitCode"`
	SemanticExitCode   *int  `yaml:"semanticExitCode"`
	TypeExitCode       *int  `yaml:"typeExitCode"`
	StrictConditionals *bool `yaml:"strictConditionals"`
}

// ExitCodes is the resolved form Config.Resolve produces, matching the
// three-code shape errors.ExitCodeFor expects.
type ExitCodes struct {
	Syntax   int
	Semantic int
	Type     int
}

// Resolved is the fully-defaulted configuration cmd/wacc threads
// through a run.
type Resolved struct {
	ExitCodes          ExitCodes
	StrictConditionals bool
}

// Defaults matches a WACC reference compiler's conventional exit codes:
// 100 for syntax errors, 200 for semantic, 300 for type.
func Defaults() Resolved {
	return Resolved{
		ExitCodes:          ExitCodes{Syntax: 100, Semantic: 200, Type: 300},
		StrictConditionals: false,
	}
}

// Load reads and parses path as a YAML manifest, then resolves it
// against Defaults. A missing file is not an error — it resolves to
// the defaults unchanged, so a project need not carry a manifest at
// all.
func Load(path string) (Resolved, error) {
	resolved := Defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return resolved, nil
	}
	if err != nil {
		return Resolved{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Resolved{}, err
	}
	return cfg.resolve(resolved), nil
}

func (c Config) resolve(base Resolved) Resolved {
	if c.SyntaxExitCode != nil {
		base.ExitCodes.Syntax = *c.SyntaxExitCode
	}
	if c.SemanticExitCode != nil {
		base.ExitCodes.Semantic = *c.SemanticExitCode
	}
	if c.TypeExitCode != nil {
		base.ExitCodes.Type = *c.TypeExitCode
	}
	if c.StrictConditionals != nil {
		base.StrictConditionals = *c.StrictConditionals
	}
	return base
}

// Write marshals cfg back out to path, mirroring the teacher's own
// manifest-writing `init` command.
func Write(path string, cfg Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
