// Package auth implements account identity and credentials: registration
// with salted slow password hashing, login with enumeration-safe failure
// semantics, and session token issuance. The Storage interface carries
// the atomic quota check-and-increment that the request guards depend on.
package auth
