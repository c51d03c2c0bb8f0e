package energy

import "fmt"

// ErrorKind tags a failure so the HTTP adapter can translate it
// without inspecting message text.
type ErrorKind string

const (
	KindInvalidMeasurement  ErrorKind = "invalid_measurement"
	KindInvalidRequest      ErrorKind = "invalid_request"
	KindUndefinedEfficiency ErrorKind = "undefined_efficiency"
	KindInfeasibleSchedule  ErrorKind = "infeasible_schedule"
)

// Error is the tagged failure value returned by the energy engine.
// All engine failures are deterministic functions of the input; callers
// must correct the input rather than retry.
type Error struct {
	Kind    ErrorKind
	Message string

	// PartialTrajectory is populated for infeasible schedules so
	// operators can see how far the simulation got before the tank
	// constraints broke.
	PartialTrajectory []HourSlot
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets callers match on kind with errors.Is against a bare-kind error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func invalidMeasurement(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidMeasurement, Message: fmt.Sprintf(format, args...)}
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func undefinedEfficiency(format string, args ...any) *Error {
	return &Error{Kind: KindUndefinedEfficiency, Message: fmt.Sprintf(format, args...)}
}
