package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Validate checks a configuration against the embedded CUE schema.
// Enum values (strategy names, store kinds, log levels) and required
// non-empty strings are all expressed in the schema rather than as
// hand-written switch statements.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	data := ctx.Encode(cfg)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
