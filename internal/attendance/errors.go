package attendance

import (
	"fmt"
	"net/http"
)

// Category groups rejection reasons for clients and logging.
type Category string

const (
	CategoryValidation    Category = "VALIDATION"
	CategoryNotFound      Category = "NOT_FOUND"
	CategoryPolicy        Category = "POLICY_VIOLATION"
	CategoryConflict      Category = "CONFLICT"
	CategoryConfiguration Category = "CONFIGURATION"
	CategoryInternal      Category = "INTERNAL"
)

// Error is a terminal admission rejection. Every rejection carries a
// machine-readable code, a category, and the HTTP status the API should
// answer with.
type Error struct {
	Code       string
	Category   Category
	Message    string
	HTTPStatus int
	Meta       map[string]any
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func errParticipantNotFound(id string) *Error {
	return &Error{
		Code:       "PARTICIPANT_NOT_FOUND",
		Category:   CategoryNotFound,
		Message:    fmt.Sprintf("participant %s not found", id),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errParticipantNotActive(id string) *Error {
	return &Error{
		Code:       "PARTICIPANT_NOT_ACTIVE",
		Category:   CategoryValidation,
		Message:    fmt.Sprintf("participant %s is not active", id),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errInvalidEventKind(kind Kind) *Error {
	return &Error{
		Code:       "INVALID_EVENT_KIND",
		Category:   CategoryValidation,
		Message:    fmt.Sprintf("unknown event kind %q", kind),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errInvalidTimestamp(raw string) *Error {
	return &Error{
		Code:       "INVALID_TIMESTAMP",
		Category:   CategoryValidation,
		Message:    fmt.Sprintf("timestamp %q is not a valid ISO-8601 value", raw),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errInvalidWorkDay(weekday string) *Error {
	return &Error{
		Code:       "INVALID_WORK_DAY",
		Category:   CategoryPolicy,
		Message:    fmt.Sprintf("%s is not a work day", weekday),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errOutOfWorkHours(start string) *Error {
	return &Error{
		Code:       "OUT_OF_WORK_HOURS",
		Category:   CategoryPolicy,
		Message:    fmt.Sprintf("check-in is not allowed before %s", start),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errLateCheckInNotAllowed(minutesLate int) *Error {
	return &Error{
		Code:       "LATE_CHECK_IN_NOT_ALLOWED",
		Category:   CategoryPolicy,
		Message:    fmt.Sprintf("late check-in is disabled by policy (%d minutes past start)", minutesLate),
		HTTPStatus: http.StatusBadRequest,
	}
}

func errIPWhitelistNotConfigured() *Error {
	return &Error{
		Code:       "IP_WHITELIST_NOT_CONFIGURED",
		Category:   CategoryPolicy,
		Message:    "IP whitelisting is enabled but no addresses are configured",
		HTTPStatus: http.StatusForbidden,
	}
}

func errIPNotWhitelisted(ip string) *Error {
	return &Error{
		Code:       "IP_NOT_WHITELISTED",
		Category:   CategoryPolicy,
		Message:    fmt.Sprintf("address %s is not whitelisted", ip),
		HTTPStatus: http.StatusForbidden,
	}
}

func errLocationRequired() *Error {
	return &Error{
		Code:       "LOCATION_REQUIRED",
		Category:   CategoryPolicy,
		Message:    "a latitude and longitude are required for this submission",
		HTTPStatus: http.StatusBadRequest,
	}
}

func errOfficeNotConfigured() *Error {
	return &Error{
		Code:       "OFFICE_LOCATION_NOT_CONFIGURED",
		Category:   CategoryConfiguration,
		Message:    "radius checking is enabled but the office location is not configured",
		HTTPStatus: http.StatusInternalServerError,
	}
}

func errLocationOutOfRange(distance, radius float64) *Error {
	return &Error{
		Code:       "LOCATION_OUT_OF_RANGE",
		Category:   CategoryPolicy,
		Message:    fmt.Sprintf("you are %.0f m from the office, outside the %.0f m radius", distance, radius),
		HTTPStatus: http.StatusBadRequest,
		Meta:       map[string]any{"distance": distance, "radius": radius},
	}
}

func errAlreadyRecorded(kind Kind) *Error {
	code := "ALREADY_CHECKED_IN"
	msg := "you have already checked in today"
	if kind == KindCheckOut {
		code = "ALREADY_CHECKED_OUT"
		msg = "you have already checked out today"
	}
	return &Error{
		Code:       code,
		Category:   CategoryConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// errInternal hides the underlying cause from callers; the pipeline logs it.
func errInternal() *Error {
	return &Error{
		Code:       "INTERNAL",
		Category:   CategoryInternal,
		Message:    "an unexpected internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
	}
}
