package plans

import "errors"

var (
	ErrPlanNotFound      = errors.New("plans: plan not found")
	ErrPlanAlreadyExists = errors.New("plans: plan already exists")
	ErrUnknownPlan       = errors.New("plans: unknown plan key")
)
