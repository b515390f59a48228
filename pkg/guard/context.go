package guard

import (
	"context"

	"github.com/conciergehq/platform/pkg/plans"
)

type usageCtxKey struct{ feature plans.Feature }

func setUsage(ctx context.Context, feature plans.Feature, usage int64) context.Context {
	return context.WithValue(ctx, usageCtxKey{feature: feature}, usage)
}

// UsageFromContext returns the usage counter value recorded by
// ConsumeQuota for the feature on this request.
func UsageFromContext(ctx context.Context, feature plans.Feature) (int64, bool) {
	usage, ok := ctx.Value(usageCtxKey{feature: feature}).(int64)
	return usage, ok
}
