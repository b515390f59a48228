// Package guard implements the per-request guard chain for protected
// endpoints: authenticate the bearer token, enforce the endpoint's role,
// and atomically consume metered quota. Checks are ordered and
// side-effect-free on failure; only a successful quota consumption
// mutates state.
package guard
