// Package host declares the capability interface the scheduler core consumes
// from its embedding hypervisor: domain/VCPU liveness, interrupt-safe
// critical sections, and the scheduling soft-IRQ. It mirrors the vtable
// Xen hands to a pluggable scheduler, expressed as Go interfaces instead of
// a struct of function pointers.
package host

import (
	"github.com/google/uuid"
)

// Identification the scheduler presents in the host's scheduler vtable.
const (
	SchedulerName    = "ARINC 653 Scheduler"
	SchedulerOptName = "arinc653"
)

// Host is the set of hypervisor services the scheduler core needs. A real
// binding implements this against the host's actual domain/VCPU lifecycle,
// timer, and CPU pool machinery; scheduler/host/fake provides a
// deterministic in-memory implementation for tests.
type Host interface {
	// RunExclusive runs fn with local interrupts disabled, the way Xen's
	// spin_lock_irqsave does around the scheduler's critical sections.
	// fn must not call back into the scheduler; doing so would deadlock
	// against the scheduler's own instance lock.
	RunExclusive(fn func())

	// RaiseScheduleInterrupt requests a scheduling soft-IRQ on cpu, so the
	// host re-invokes DoSchedule promptly after a sleep/wake edge.
	RaiseScheduleInterrupt(cpu int)

	// IsRunnable reports whether the given VCPU is currently runnable from
	// the host's perspective (e.g. not blocked on I/O). The scheduler
	// already tracks awake/asleep itself; this is the host's independent
	// say on runnability.
	IsRunnable(domain uuid.UUID, vcpuID int) bool

	// OnlineCPUs returns the CPUs domain's cpupool currently has online,
	// used by PickCPU to honor affinity without ever initiating a
	// migration itself.
	OnlineCPUs(domain uuid.UUID) []int
}
