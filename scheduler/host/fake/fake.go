// Package fake provides a deterministic, in-memory host.Host implementation
// for scheduler tests, in the style of the mock interrupt raisers and tap
// devices the rest of the corpus hand-rolls for its own device tests.
package fake

import (
	"sync"

	"github.com/google/uuid"
)

// Host is a test double for host.Host. RunExclusive just takes a plain
// mutex of its own (there is no interrupt controller to model in a test),
// so host calls made inside an exclusive section do not block on it.
// RaiseScheduleInterrupt calls are recorded so tests can assert on which
// CPUs the scheduler asked the host to reschedule.
type Host struct {
	mu   sync.Mutex
	excl sync.Mutex

	Interrupts []int // cpus RaiseScheduleInterrupt was called with, in order

	// Runnable maps (domain, vcpu) to the value IsRunnable should return.
	// Unlisted VCPUs are runnable by default.
	Runnable map[RunnableKey]bool

	// Online maps a domain handle to the cpus its pool has online. An
	// unlisted domain reports no online-CPU opinion (nil), which callers
	// should treat as "any CPU."
	Online map[uuid.UUID][]int
}

// RunnableKey identifies one (domain, vcpu) pair in Host.Runnable.
type RunnableKey struct {
	Domain uuid.UUID
	VCPU   int
}

// New returns a Host with every VCPU runnable and no CPU affinity
// restrictions, ready for a test to narrow down as needed.
func New() *Host {
	return &Host{
		Runnable: make(map[RunnableKey]bool),
		Online:   make(map[uuid.UUID][]int),
	}
}

func (h *Host) RunExclusive(fn func()) {
	h.excl.Lock()
	defer h.excl.Unlock()
	fn()
}

func (h *Host) RaiseScheduleInterrupt(cpu int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Interrupts = append(h.Interrupts, cpu)
}

func (h *Host) IsRunnable(domain uuid.UUID, vcpuID int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if runnable, ok := h.Runnable[RunnableKey{Domain: domain, VCPU: vcpuID}]; ok {
		return runnable
	}
	return true
}

func (h *Host) OnlineCPUs(domain uuid.UUID) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Online[domain]
}

// SetRunnable overrides whether (domain, vcpu) is runnable.
func (h *Host) SetRunnable(domain uuid.UUID, vcpuID int, runnable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Runnable[RunnableKey{Domain: domain, VCPU: vcpuID}] = runnable
}

// SetOnline overrides the CPUs online for domain's pool.
func (h *Host) SetOnline(domain uuid.UUID, cpus []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Online[domain] = cpus
}
