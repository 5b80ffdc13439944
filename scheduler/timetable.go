package scheduler

import "time"

// SetSchedule validates sched and, if valid, installs it atomically,
// corresponding to arinc653_sched_set. The new schedule takes effect
// immediately: the dispatcher is made to believe the current major frame
// has already expired, so the next call to DoSchedule starts the new
// timetable from its first entry rather than waiting for the old major
// frame to run out.
//
// now is the caller's current time, used only to force that immediate
// takeover; SetSchedule never reads the wall clock itself.
func (s *Scheduler) SetSchedule(now time.Time, sched Schedule) error {
	if err := sched.validate(); err != nil {
		s.m.ScheduleInstallFailed(causeLabel(err))
		return newError("SetSchedule", KindInvalid, err)
	}

	s.withLock(func() {
		s.schedule = *sched.clone()
		s.resolveProvidersLocked()

		s.nextMajorFrame = now
		s.schedIndex = 0
		s.entry = nil
		s.nextSwitchTime = now
		s.started = false
	})

	s.m.ScheduleInstalled()
	s.log.Infow("schedule installed", "entries", len(sched.Entries), "major_frame", sched.MajorFrame)
	return nil
}

// GetSchedule returns a deep copy of the currently installed schedule,
// corresponding to arinc653_sched_get. The returned value's ResolvedVCPU
// fields are always nil; they are scheduler-internal.
func (s *Scheduler) GetSchedule() Schedule {
	var out Schedule
	s.withLock(func() {
		out = *s.schedule.clone()
	})
	return out
}

// causeLabel returns a short metric-friendly label for a validation error.
func causeLabel(err error) string {
	switch err {
	case ErrMajorFrameNotPositive:
		return "major_frame_not_positive"
	case ErrTooFewEntries:
		return "too_few_entries"
	case ErrTooManyEntries:
		return "too_many_entries"
	case ErrTooFewProviders:
		return "too_few_providers"
	case ErrTooManyProviders:
		return "too_many_providers"
	case ErrNonPositiveRuntime:
		return "non_positive_runtime"
	case ErrRuntimeExceedsMajorFrame:
		return "runtime_exceeds_major_frame"
	default:
		return "unknown"
	}
}
