// Package jwt implements signed, time-boxed session tokens using
// HMAC-SHA256. Tokens are stateless bearer credentials embedding
// identity, role, and a point-in-time plan snapshot; revocation before
// natural expiry is not supported.
package jwt
