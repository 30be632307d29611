// Package types defines the in-memory table model, the ordered object used
// by structured formats, codec configuration, and the standard errors shared
// by the cellpatch codecs, the edit engine, and the CLI.
package types
