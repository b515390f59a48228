package jwt

import "context"

type claimsCtxKey struct{}

// SetClaims stores verified session claims in the context.
func SetClaims(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext retrieves verified session claims from the context.
func ClaimsFromContext(ctx context.Context) (SessionClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(SessionClaims)
	return claims, ok
}
