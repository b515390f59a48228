// Package mongostore persists accounts and plans in MongoDB. Unique
// indexes back the registration and plan-seeding uniqueness guarantees,
// and quota consumption is a single conditional FindOneAndUpdate so the
// check and the increment cannot be split by a concurrent request.
package mongostore
