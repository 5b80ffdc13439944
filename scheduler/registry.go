package scheduler

// InitDomain allocates per-domain state for a newly created domain and
// records its handle-to-id mapping. It corresponds to a653sched_alloc_domdata
// plus init_domain: a domain starts out its own parent (primary) and
// healthy.
func (s *Scheduler) InitDomain(handle DomainHandle, id DomainID) {
	s.withLock(func() {
		s.domains[id] = newDomainState(id)
		s.handles[handle] = id
		s.log.Infow("domain initialized", "domain_id", id, "handle", handle)
	})
}

// DestroyDomain releases a domain's per-domain state. It corresponds to
// a653sched_destroy_domain / a653sched_free_domdata. Any VCPUs still
// registered under this domain are left as-is; the host is expected to have
// already called RemoveVCPU for each of them.
func (s *Scheduler) DestroyDomain(id DomainID) {
	s.withLock(func() {
		for handle, domID := range s.handles {
			if domID == id {
				delete(s.handles, handle)
			}
		}
		delete(s.domains, id)
		s.log.Infow("domain destroyed", "domain_id", id)
	})
}

// InsertVCPU registers a non-idle VCPU with the scheduler, corresponding to
// a653sched_alloc_vdata plus a653sched_insert_vcpu. The VCPU starts asleep;
// the host must call Wake once it is ready to run.
//
// If domainID is BootstrapDomainID, the VCPU is also auto-appended to the
// timetable as a single-provider entry with DefaultTimeslice runtime and the
// major frame is extended to make room, exactly as the source does for
// dom0. If the timetable is already at MaxEntries, the VCPU is still
// registered but is not runnable until an operator installs a schedule that
// names it; this is reported via the BootstrapVCPUDropped metric.
func (s *Scheduler) InsertVCPU(handle DomainHandle, domainID DomainID, vcpuID int) *VCPURecord {
	v := &VCPURecord{DomainHandle: handle, DomainID: domainID, VCPUID: vcpuID}

	s.withLock(func() {
		k := key{domain: handle, vcpu: vcpuID}
		s.vcpus[k] = v
		s.vcpuOrder = append(s.vcpuOrder, k)

		if domainID == BootstrapDomainID {
			if len(s.schedule.Entries) < MaxEntries {
				s.schedule.Entries = append(s.schedule.Entries, ScheduleEntry{
					ServiceID: -1,
					Runtime:   DefaultTimeslice,
					Providers: []Provider{{DomainHandle: handle, VCPUID: vcpuID}},
				})
				s.schedule.MajorFrame += DefaultTimeslice
				s.log.Infow("bootstrap vcpu auto-scheduled", "vcpu_id", vcpuID)
			} else {
				s.m.BootstrapVCPUDropped()
				s.log.Warnw("bootstrap vcpu dropped: timetable full", "vcpu_id", vcpuID)
			}
		}

		s.resolveProvidersLocked()
	})

	return v
}

// RemoveVCPU unregisters a VCPU, corresponding to a653sched_remove_vcpu.
// Any schedule entries that reference it are re-resolved to a nil
// ResolvedVCPU, so the selector will skip over it on the next dispatch.
func (s *Scheduler) RemoveVCPU(handle DomainHandle, vcpuID int) {
	s.withLock(func() {
		k := key{domain: handle, vcpu: vcpuID}
		delete(s.vcpus, k)
		for i, ok := range s.vcpuOrder {
			if ok == k {
				s.vcpuOrder = append(s.vcpuOrder[:i], s.vcpuOrder[i+1:]...)
				break
			}
		}
		s.resolveProvidersLocked()
	})
}

// findVCPULocked is the Go equivalent of find_vcpu: a lookup in the
// registry map for the VCPU matching (handle, vcpuID). Callers must hold s.mu.
func (s *Scheduler) findVCPULocked(handle DomainHandle, vcpuID int) *VCPURecord {
	return s.vcpus[key{domain: handle, vcpu: vcpuID}]
}

// resolveProvidersLocked is the Go equivalent of update_schedule_vcpus: it
// refreshes every schedule entry's ResolvedVCPU cache against the current
// registry contents. Callers must hold s.mu; it runs after every registry
// mutation and after every schedule install.
func (s *Scheduler) resolveProvidersLocked() {
	for i := range s.schedule.Entries {
		providers := s.schedule.Entries[i].Providers
		for j := range providers {
			providers[j].ResolvedVCPU = s.findVCPULocked(providers[j].DomainHandle, providers[j].VCPUID)
		}
	}
}
