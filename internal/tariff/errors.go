package tariff

import "errors"

var (
	// ErrNoApplicableRule means neither an override nor a recurring rule
	// covers the requested instant. It is a data-completeness error; callers
	// must never substitute a zero or default price.
	ErrNoApplicableRule = errors.New("tariff: no applicable rule")

	// ErrInvalidSession means the session's samples are not time-ordered or
	// report decreasing cumulative energy.
	ErrInvalidSession = errors.New("tariff: invalid session")

	// ErrOverlappingRuleConflict means a rule write would overlap a
	// differently priced interval without an explicit replace instruction.
	ErrOverlappingRuleConflict = errors.New("tariff: overlapping rule conflict")

	// ErrRuleNotFound means a delete or update targeted a rule that does not
	// exist. Missing rules are reported, never treated as success.
	ErrRuleNotFound = errors.New("tariff: rule not found")
)
