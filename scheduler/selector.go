package scheduler

// selectProviderLocked is the Go equivalent of providers_candidate: it walks
// entry's providers in declared order (primary first, then backups) and
// returns the first one whose VCPU is currently registered and whose owning
// domain is healthy. It returns nil if no provider qualifies, which the
// dispatcher treats as "this minor frame is idle."
//
// Callers must hold s.mu.
func (s *Scheduler) selectProviderLocked(entry *ScheduleEntry) *Provider {
	for i := range entry.Providers {
		p := &entry.Providers[i]

		vcpu := p.ResolvedVCPU
		if vcpu == nil {
			continue
		}

		dom, ok := s.domains[vcpu.DomainID]
		if !ok {
			continue
		}
		if !dom.Healthy {
			continue
		}

		return p
	}
	return nil
}
