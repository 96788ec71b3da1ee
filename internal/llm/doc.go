// Package llm provides the bridge to external text-completion providers
// and the intent classifier built on top of them.
//
// The provider response is an untyped boundary: whatever comes back is
// parsed defensively into the closed action set, and anything that does not
// fit becomes an unknown action rather than an error.
package llm
