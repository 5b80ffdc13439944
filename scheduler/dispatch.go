package scheduler

import (
	"time"

	"github.com/dornerworks/a653sched/scheduler/metrics"
)

// DoSchedule is the dispatcher's core entry point, called by the host once
// per scheduling decision on cpu. It corresponds to a653sched_do_schedule:
// the cross-call state (schedIndex, entry, nextSwitchTime) lives on the
// Scheduler instance rather than C-style file-scope statics, closing the
// latent cross-instance race noted in the design notes on cross-call state.
//
// tasklet reports whether the host has pending tasklet work that must run
// in idle-VCPU context this tick, overriding any other decision. DoSchedule
// never returns a nil-VCPU Decision with a non-positive TimeSlice; callers
// needing "run the idle VCPU" check Decision.VCPU == nil.
func (s *Scheduler) DoSchedule(now time.Time, cpu int, tasklet bool) Decision {
	var (
		chosen     *VCPURecord
		nextSwitch time.Time
		idleReason metrics.IdleReason
	)

	s.withLock(func() {
		entries := s.schedule.Entries

		switch {
		case len(entries) < 1:
			// Empty timetable: nothing to run. Park for one default
			// timeslice and re-evaluate.
			s.nextMajorFrame = now.Add(DefaultTimeslice)
			nextSwitch = s.nextMajorFrame
			idleReason = metrics.IdleEmptySchedule

		case !s.started || !now.Before(s.nextMajorFrame):
			// Time to enter a new major frame. The first call ever made
			// also lands here, since the instance starts unstarted.
			s.schedIndex = 0
			start := s.nextMajorFrame
			s.nextMajorFrame = start.Add(s.schedule.MajorFrame)
			s.nextSwitchTime = start.Add(entries[0].Runtime)
			nextSwitch = s.nextSwitchTime

		default:
			for !now.Before(s.nextSwitchTime) && s.schedIndex < len(entries) {
				s.schedIndex++
				if s.schedIndex < len(entries) {
					s.nextSwitchTime = s.nextSwitchTime.Add(entries[s.schedIndex].Runtime)
				}
			}
			nextSwitch = s.nextSwitchTime
		}
		s.started = true

		if len(entries) > 0 {
			if s.schedIndex < len(entries) {
				s.entry = &s.schedule.Entries[s.schedIndex]
				if p := s.selectProviderLocked(s.entry); p != nil {
					chosen = p.ResolvedVCPU
				} else {
					idleReason = metrics.IdleNoProvider
				}
			} else {
				// Ran off the end of the timetable with major-frame time
				// still remaining: idle until the next major frame starts.
				s.entry = nil
				nextSwitch = s.nextMajorFrame
				s.nextSwitchTime = nextSwitch
				idleReason = metrics.IdleNoProvider
			}
		}

		// Runnability filter: a chosen provider only runs if the
		// scheduler believes it awake and the host agrees it is runnable.
		// Invariant I3/I4: a sleeping or host-blocked VCPU never runs.
		if chosen != nil {
			runnable := chosen.Awake()
			if runnable && s.host != nil {
				runnable = s.host.IsRunnable(chosen.DomainHandle, chosen.VCPUID)
			}
			if !runnable {
				chosen = nil
				idleReason = metrics.IdleNotRunnable
			}
		}
	})

	if tasklet {
		chosen = nil
		idleReason = metrics.IdleTasklet
	}

	// Affinity guard: DoSchedule never initiates a migration. A provider
	// whose VCPU currently lives on a different physical CPU is skipped in
	// favor of idle rather than moved; PickCPU, not DoSchedule, is what
	// decides where a VCPU should run next.
	if chosen != nil && chosen.Home != cpu {
		chosen = nil
		idleReason = metrics.IdleAffinity
	}

	slice := nextSwitch.Sub(now)
	if slice <= 0 {
		slice = DefaultTimeslice
	}
	s.m.DispatchTimeSlice(slice.Seconds())
	if chosen == nil {
		s.m.DispatchIdle(idleReason)
	}

	return Decision{VCPU: chosen, TimeSlice: slice}
}
