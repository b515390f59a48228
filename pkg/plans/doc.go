// Package plans defines the subscription plan catalog: named tiers with
// per-feature usage quotas. The catalog is compiled in and seeded into
// the store lazily; a quota of Unlimited (-1) denotes no cap.
package plans
