// Package scheduler implements the dispatch core of an ARINC 653-compatible
// partition scheduler: a cyclic, statically-defined major frame made up of
// back-to-back minor frames (schedule entries), each bound to a service that
// one or more redundant providers may fulfill.
package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxEntries bounds the number of schedule entries a timetable may hold.
	MaxEntries = 128
	// MaxProviders bounds the number of redundant providers a single
	// schedule entry may declare.
	MaxProviders = 8
	// DefaultTimeslice is the runtime granted to each of the bootstrap
	// domain's VCPUs, and the slice returned when the timetable is empty.
	DefaultTimeslice = 10 * time.Millisecond
)

// DomainHandle is the UUID-sized toolstack-assigned identifier ARINC 653
// calls a domain "handle". It is what schedule entries' providers and the
// VCPU registry key on. The all-zero handle (uuid.Nil) is the handle
// convention for the privileged bootstrap domain.
type DomainHandle = uuid.UUID

// BootstrapHandle is the reserved all-zero handle for the bootstrap domain.
var BootstrapHandle = uuid.Nil

// DomainID is the small hypervisor-assigned integer identifying a domain,
// distinct from its toolstack DomainHandle. Per-domain state (parent,
// primary/backup role, health) is keyed on DomainID, matching the host's
// domctl surface; DomainID 0 is the bootstrap domain.
type DomainID int

// BootstrapDomainID is the reserved id for the privileged bootstrap domain.
const BootstrapDomainID DomainID = 0

// Provider is a concrete (domain, VCPU) pair that can fulfill a service.
// ResolvedVCPU is a non-owning cache of the matching registry entry,
// refreshed whenever the registry changes or a schedule is installed; it is
// nil whenever no such VCPU currently exists.
type Provider struct {
	DomainHandle DomainHandle
	VCPUID       int

	ResolvedVCPU *VCPURecord
}

// ScheduleEntry describes one minor frame: the service it provides, how
// long it runs per major frame, and the ordered list of providers (primary
// first, then backups) that may fulfill it.
type ScheduleEntry struct {
	ServiceID int
	Runtime   time.Duration
	Providers []Provider
}

// Schedule is a candidate or installed timetable: an ordered sequence of
// entries plus the major frame length they must fit inside.
type Schedule struct {
	MajorFrame time.Duration
	Entries    []ScheduleEntry
}

// validate checks invariants I1 and I2 from the specification. It never
// mutates s.
func (s *Schedule) validate() error {
	if s.MajorFrame <= 0 {
		return ErrMajorFrameNotPositive
	}
	if len(s.Entries) < 1 {
		return ErrTooFewEntries
	}
	if len(s.Entries) > MaxEntries {
		return ErrTooManyEntries
	}

	var total time.Duration
	for _, e := range s.Entries {
		if e.Runtime <= 0 {
			return ErrNonPositiveRuntime
		}
		if len(e.Providers) < 1 {
			return ErrTooFewProviders
		}
		if len(e.Providers) > MaxProviders {
			return ErrTooManyProviders
		}
		total += e.Runtime
	}
	if total > s.MajorFrame {
		return ErrRuntimeExceedsMajorFrame
	}
	return nil
}

// clone returns a deep copy of s, suitable for handing to a caller that must
// not be able to mutate scheduler-owned state through the returned value.
func (s *Schedule) clone() *Schedule {
	out := &Schedule{
		MajorFrame: s.MajorFrame,
		Entries:    make([]ScheduleEntry, len(s.Entries)),
	}
	for i, e := range s.Entries {
		providers := make([]Provider, len(e.Providers))
		copy(providers, e.Providers)
		for j := range providers {
			// Resolved references are scheduler-internal; callers only
			// see the declared (handle, vcpu id) pairs.
			providers[j].ResolvedVCPU = nil
		}
		out.Entries[i] = ScheduleEntry{
			ServiceID: e.ServiceID,
			Runtime:   e.Runtime,
			Providers: providers,
		}
	}
	return out
}

// VCPURecord is the scheduler's per-VCPU bookkeeping. It exists for every
// non-idle VCPU the host has inserted into this scheduler instance.
type VCPURecord struct {
	DomainHandle DomainHandle
	DomainID     DomainID
	VCPUID       int

	// awake mirrors whether the host has called Wake (set) or Sleep
	// (cleared) on this VCPU most recently. It is read and written without
	// the instance lock, matching the source's lock-free sleep/wake path.
	awake atomic.Bool

	// Home is the VCPU's last known physical CPU, used by PickCPU and by
	// the dispatcher's affinity guard.
	Home int
}

// Awake reports whether the host has most recently woken this VCPU.
func (v *VCPURecord) Awake() bool { return v.awake.Load() }

// DomainState is the scheduler's per-domain bookkeeping, keyed by DomainID:
// parent identity (for primary/backup derivation) and operator-asserted
// health. Self/Parent are domain ids, not handles, matching the source's
// DOM_PRIV(d)->parent comparison against the caller's own domain id.
type DomainState struct {
	Self    DomainID
	Parent  DomainID
	Primary bool
	Healthy bool
}

// newDomainState returns the default state for a freshly created domain:
// its own parent (i.e. primary), and healthy. A domain is primary exactly
// when it is its own parent, matching the source's convention that a
// backup's adjust command supplies the primary's domain id as parent.
func newDomainState(self DomainID) *DomainState {
	return &DomainState{
		Self:    self,
		Parent:  self,
		Primary: true,
		Healthy: true,
	}
}

// Decision is the dispatcher's per-tick verdict.
type Decision struct {
	// VCPU is nil when the host's idle VCPU should run; the dispatcher
	// never fails to make a decision, but it has no opinion on what
	// "idle" means to the host, so it reports "no VCPU" rather than
	// inventing an idle sentinel.
	VCPU      *VCPURecord
	TimeSlice time.Duration
	Migrated  bool
}
