package attendance

import (
	"time"

	"github.com/rafli4514/absensi-magang-sub001/internal/policy"
)

// EvaluateRules decides whether a clock event is permitted at the given
// civil time under the given policy, and what status it gets. It is a pure
// function over its inputs.
//
// Gates, in order: work day, before-opening (check-in only), lateness
// (check-in only). Check-outs carry no time-of-day restriction.
func EvaluateRules(now time.Time, kind Kind, cfg policy.Config) (Status, *Error) {
	weekday := now.Weekday().String()
	if !cfg.IsWorkDay(weekday) {
		return StatusInvalid, errInvalidWorkDay(weekday)
	}

	if kind != KindCheckIn {
		return StatusValid, nil
	}

	start, err := atTimeOfDay(now, cfg.Schedule.WorkStartTime)
	if err != nil {
		// A malformed start time falls back to the documented default.
		start, _ = atTimeOfDay(now, policy.Defaults().Schedule.WorkStartTime)
	}

	if now.Before(start) {
		return StatusInvalid, errOutOfWorkHours(start.Format("15:04"))
	}

	// Whole minutes past opening; the threshold comparison is strict, so
	// arriving at exactly the threshold minute is still on time.
	diffMinutes := int(now.Sub(start).Minutes())
	if diffMinutes > cfg.Schedule.LateThresholdMinutes {
		if !cfg.Schedule.AllowLateCheckIn {
			return StatusInvalid, errLateCheckInNotAllowed(diffMinutes)
		}
		return StatusLate, nil
	}
	return StatusValid, nil
}
