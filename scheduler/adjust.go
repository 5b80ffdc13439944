package scheduler

import "time"

// DomainAdjustment is the per-domain PUTINFO payload: parent and health, as
// carried by xen_domctl_scheduler_op's arinc653 union member.
type DomainAdjustment struct {
	// Parent is the domain id this domain should defer to for
	// primary/backup derivation. Pass NoParentChange to leave it
	// unmodified, matching the source's parent == -1 sentinel.
	Parent  DomainID
	Healthy bool
}

// NoParentChange is the DomainAdjustment.Parent sentinel meaning "leave the
// domain's parent as-is," the Go equivalent of the source's parent == -1.
const NoParentChange DomainID = -1

// AdjustDomainPut applies a PUTINFO command to one domain, corresponding to
// a653sched_adjust_domain's XEN_DOMCTL_SCHEDOP_putinfo case. A domain is
// primary exactly when it is its own parent.
func (s *Scheduler) AdjustDomainPut(id DomainID, adj DomainAdjustment) error {
	var notFound bool
	s.withLock(func() {
		dom, ok := s.domains[id]
		if !ok {
			notFound = true
			return
		}
		if adj.Parent != NoParentChange {
			dom.Parent = adj.Parent
			dom.Primary = dom.Parent == id
		}
		dom.Healthy = adj.Healthy
	})
	if notFound {
		return newError("AdjustDomainPut", KindInvalid, errDomainNotFound)
	}
	s.log.Infow("domain adjusted", "domain_id", id, "healthy", adj.Healthy)
	return nil
}

// AdjustDomainGet returns the current DomainAdjustment for a domain,
// corresponding to the GETINFO case.
func (s *Scheduler) AdjustDomainGet(id DomainID) (DomainAdjustment, error) {
	var (
		out      DomainAdjustment
		notFound bool
	)
	s.withLock(func() {
		dom, ok := s.domains[id]
		if !ok {
			notFound = true
			return
		}
		out = DomainAdjustment{Parent: dom.Parent, Healthy: dom.Healthy}
	})
	if notFound {
		return DomainAdjustment{}, newError("AdjustDomainGet", KindInvalid, errDomainNotFound)
	}
	return out, nil
}

// ResetDispatchState drops the dispatcher's cross-call cursor, forcing the
// next DoSchedule call to treat the current tick as a fresh major-frame
// boundary. It corresponds to a653_switch_sched's re-routing of a CPU's
// scheduling lock onto a newly assigned scheduler instance: the first
// decision an instance makes for a CPU must not assume any prior state.
func (s *Scheduler) ResetDispatchState(now time.Time) {
	s.withLock(func() {
		s.started = false
		s.nextMajorFrame = now
		s.schedIndex = 0
		s.entry = nil
	})
}
