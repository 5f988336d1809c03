// Package types provides type definitions for structured data used throughout the doc-podcast pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// NormalizeText lowercases s and collapses runs of whitespace to single spaces.
// Used wherever model output is matched against known text.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
