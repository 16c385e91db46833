package planner

import "errors"

var (
	ErrNoJSONArrayFound     = errors.New("no json array found in model output")
	ErrMalformedJSON        = errors.New("model output contains malformed json")
	ErrPlanGenerationFailed = errors.New("plan generation failed")
	ErrModelInvocation      = errors.New("model invocation failed")
	ErrInvalidRequest       = errors.New("invalid plan request")
)
