package plans

// Feature identifies a metered platform feature whose invocations are
// counted against a plan quota.
type Feature string

// Metered features offered by the platform.
const (
	FeatureIASearch    Feature = "iaSearch"    // AI-powered accommodation search
	FeatureSuggestions Feature = "suggestions" // AI suggestion generation
)

// Unlimited marks a quota with no cap (-1).
const Unlimited int64 = -1

// Plan describes a subscription tier and its per-feature quotas.
// Plans are immutable once referenced by an account.
type Plan struct {
	Name     string
	Quotas   map[Feature]int64 // invocations allowed per feature, Unlimited for no cap
	MaxUsers int               // maximum concurrent users allowed under this plan
}

// Quota returns the quota for a feature and whether the plan includes it.
func (p Plan) Quota(f Feature) (int64, bool) {
	q, ok := p.Quotas[f]
	return q, ok
}

// IsUnlimited reports whether the plan places no cap on the feature.
func (p Plan) IsUnlimited(f Feature) bool {
	return p.Quotas[f] == Unlimited
}
