// Package config loads process-wide configuration for memberbridge.
//
// Configuration is read once at startup from a YAML file (with
// MEMBERBRIDGE_* environment overrides) and validated against an
// embedded CUE schema so that typos and out-of-range values fail at
// boot instead of surfacing mid-migration. The migration strategy is
// exposed as an immutable value; business logic receives it by value
// and never consults ambient globals.
package config
