package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dornerworks/a653sched/scheduler/host"
	"github.com/dornerworks/a653sched/scheduler/metrics"
)

// key identifies a provider slot by the (domain, vcpu) pair the registry is
// keyed on, the same pair the original source compares with memcmp + an
// integer equality check.
type key struct {
	domain DomainHandle
	vcpu   int
}

// Scheduler is one instance of the ARINC 653 scheduler core: the timetable,
// the VCPU registry, per-domain state, and the lock that serializes every
// mutation and read of them. One Scheduler corresponds to one Xen
// "a653sched_priv_t" / cpupool scheduler instance.
type Scheduler struct {
	log  *zap.SugaredLogger
	host host.Host
	m    *metrics.Metrics

	mu sync.Mutex

	schedule       Schedule
	nextMajorFrame time.Time

	vcpus     map[key]*VCPURecord
	vcpuOrder []key // iteration order, mirrors Xen's vcpu_list
	domains   map[DomainID]*DomainState

	// handles maps a domain's toolstack handle to its hypervisor-assigned
	// id, so provider resolution (by handle) and domain health lookups
	// (by id) can both operate off the registry.
	handles map[DomainHandle]DomainID

	// Cross-call dispatcher state, promoted from the source's file-scope
	// statics onto the instance per the note in spec.md §9: a scheduler
	// instance only ever drives one physical CPU's decisions at a time in
	// this design, so this state is safe under the instance lock alone.
	schedIndex     int
	entry          *ScheduleEntry
	nextSwitchTime time.Time
	started        bool
}

// New constructs an initialized, empty Scheduler instance. It corresponds to
// the source's a653sched_init: an empty timetable, an empty registry, and
// the lock ready for use.
func New(log *zap.SugaredLogger, h host.Host, m *metrics.Metrics) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Scheduler{
		log:     log,
		host:    h,
		m:       m,
		vcpus:   make(map[key]*VCPURecord),
		domains: make(map[DomainID]*DomainState),
		handles: make(map[DomainHandle]DomainID),
	}
}

// Close releases the instance. There is nothing to persist or flush; it
// exists to mirror a653sched_deinit and to give callers a symmetric
// lifecycle to reason about.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vcpus = nil
	s.vcpuOrder = nil
	s.domains = nil
	s.handles = nil
	s.schedule = Schedule{}
	return nil
}

func (s *Scheduler) withLock(fn func()) {
	if s.host != nil {
		s.host.RunExclusive(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			fn()
		})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
