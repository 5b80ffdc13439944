package scheduler_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dornerworks/a653sched/scheduler"
	"github.com/dornerworks/a653sched/scheduler/host/fake"
)

// newTestDomain registers a healthy domain and one runnable, awake VCPU for
// it, returning the handle and VCPU record.
func newTestDomain(t *testing.T, s *scheduler.Scheduler, id scheduler.DomainID, vcpuID int) (scheduler.DomainHandle, *scheduler.VCPURecord) {
	t.Helper()
	handle := uuid.New()
	s.InitDomain(handle, id)
	v := s.InsertVCPU(handle, id, vcpuID)
	s.Wake(v, 0)
	return handle, v
}

func TestDoSchedule_Scenario1_TwoHealthyProviders(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	hD1, _ := newTestDomain(t, s, 1, 0)
	hD2, _ := newTestDomain(t, s, 2, 0)

	sched := scheduler.Schedule{
		MajorFrame: 30 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hD1, VCPUID: 0}}},
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hD2, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	ticks := []time.Duration{0, 5, 10, 15, 20, 25}
	wantDomain := []scheduler.DomainHandle{hD1, hD1, hD2, hD2, {}, {}}

	for i, ms := range ticks {
		d := s.DoSchedule(base.Add(ms*time.Millisecond), 0, false)
		if wantDomain[i] == (scheduler.DomainHandle{}) {
			assert.Nil(t, d.VCPU, "tick %d expected idle", i)
		} else {
			require.NotNil(t, d.VCPU, "tick %d expected a VCPU", i)
			assert.Equal(t, wantDomain[i], d.VCPU.DomainHandle, "tick %d", i)
		}
	}
}

func TestDoSchedule_Scenario2_UnhealthyProviderFallsThroughToIdle(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	hD1, _ := newTestDomain(t, s, 1, 0)
	hD2, _ := newTestDomain(t, s, 2, 0)

	sched := scheduler.Schedule{
		MajorFrame: 30 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hD1, VCPUID: 0}}},
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hD2, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	require.NoError(t, s.AdjustDomainPut(2, scheduler.DomainAdjustment{Parent: scheduler.NoParentChange, Healthy: true}))

	d := s.DoSchedule(base, 0, false)
	require.NotNil(t, d.VCPU)
	assert.Equal(t, hD1, d.VCPU.DomainHandle)

	d = s.DoSchedule(base.Add(5*time.Millisecond), 0, false)
	require.NotNil(t, d.VCPU)

	// Mark D2 unhealthy at t=12ms: its minor frame began at 10ms, but no
	// dispatch has happened inside it yet.
	require.NoError(t, s.AdjustDomainPut(2, scheduler.DomainAdjustment{Parent: scheduler.NoParentChange, Healthy: false}))

	ticks := []time.Duration{12, 15, 20, 25}
	for i, ms := range ticks {
		d := s.DoSchedule(base.Add(ms*time.Millisecond), 0, false)
		assert.Nil(t, d.VCPU, "tick %d expected idle once D2 is unhealthy", i)
	}
}

func TestDoSchedule_Scenario3_InvalidSetLeavesPreviousScheduleInPlace(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	hD1, _ := newTestDomain(t, s, 1, 0)

	good := scheduler.Schedule{
		MajorFrame: 30 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hD1, VCPUID: 0}}},
		},
	}
	require.NoError(t, s.SetSchedule(time.Now(), good))

	bad := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10*time.Millisecond + time.Nanosecond, Providers: []scheduler.Provider{{DomainHandle: hD1, VCPUID: 0}}},
		},
	}
	err := s.SetSchedule(time.Now(), bad)
	require.Error(t, err)
	kind, ok := scheduler.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, scheduler.KindInvalid, kind)

	got := s.GetSchedule()
	assert.Equal(t, good.MajorFrame, got.MajorFrame)
}

func TestInsertVCPU_Scenario4_BootstrapDomainAutoSchedule(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	handle := uuid.New()
	s.InitDomain(handle, scheduler.BootstrapDomainID)

	s.InsertVCPU(handle, scheduler.BootstrapDomainID, 0)
	s.InsertVCPU(handle, scheduler.BootstrapDomainID, 1)

	got := s.GetSchedule()
	require.Len(t, got.Entries, 2)
	assert.Equal(t, 20*time.Millisecond, got.MajorFrame)
	for _, e := range got.Entries {
		assert.Equal(t, scheduler.DefaultTimeslice, e.Runtime)
	}
}

func TestDoSchedule_Scenario5_WakeMakesAPreviouslyIdleVCPUEligible(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	handle := uuid.New()
	s.InitDomain(handle, 1)
	v := s.InsertVCPU(handle, 1, 0)
	// v starts asleep; do not wake it yet.

	sched := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: handle, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	d := s.DoSchedule(base, 0, false)
	assert.Nil(t, d.VCPU, "asleep VCPU must not be selected")

	s.Wake(v, 0)
	d = s.DoSchedule(base.Add(time.Millisecond), 0, false)
	require.NotNil(t, d.VCPU)
	assert.Equal(t, handle, d.VCPU.DomainHandle)
}

func TestDoSchedule_Scenario6_SetMidFrameTakesOverImmediately(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	hOld, _ := newTestDomain(t, s, 1, 0)
	hNew, _ := newTestDomain(t, s, 2, 0)

	old := scheduler.Schedule{
		MajorFrame: 100 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 100 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hOld, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, old))
	s.DoSchedule(base.Add(10*time.Millisecond), 0, false)

	fresh := scheduler.Schedule{
		MajorFrame: 20 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 20 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: hNew, VCPUID: 0}}},
		},
	}
	setAt := base.Add(50 * time.Millisecond)
	require.NoError(t, s.SetSchedule(setAt, fresh))

	d := s.DoSchedule(setAt.Add(time.Microsecond), 0, false)
	require.NotNil(t, d.VCPU)
	assert.Equal(t, hNew, d.VCPU.DomainHandle)
}

func TestDoSchedule_EmptyTimetableIdlesAtDefaultTimeslice(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	d := s.DoSchedule(time.Now(), 0, false)
	assert.Nil(t, d.VCPU)
	assert.Equal(t, scheduler.DefaultTimeslice, d.TimeSlice)
}

func TestDoSchedule_BoundaryRuntimeEqualsMajorFrameHasNoSlack(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	h, _ := newTestDomain(t, s, 1, 0)
	sched := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: h, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	d := s.DoSchedule(base, 0, false)
	require.NotNil(t, d.VCPU)
	assert.Equal(t, 10*time.Millisecond, d.TimeSlice)
}

func TestDoSchedule_TaskletOverridesEverything(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	h, _ := newTestDomain(t, s, 1, 0)
	sched := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: h, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	d := s.DoSchedule(base, 0, true)
	assert.Nil(t, d.VCPU)
}

func TestDoSchedule_AffinityGuardSkipsAMigratedVCPU(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	h, v := newTestDomain(t, s, 1, 0)
	v.Home = 3

	sched := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: h, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	d := s.DoSchedule(base, 0, false)
	assert.Nil(t, d.VCPU, "vcpu is homed on cpu 3, cpu 0's dispatch should idle")
}

func TestDoSchedule_HostNotRunnableFallsThroughToIdle(t *testing.T) {
	h := fake.New()
	s := scheduler.New(nil, h, nil)
	handle := uuid.New()
	s.InitDomain(handle, 1)
	v := s.InsertVCPU(handle, 1, 0)
	s.Wake(v, 0)
	h.SetRunnable(handle, 0, false)

	sched := scheduler.Schedule{
		MajorFrame: 10 * time.Millisecond,
		Entries: []scheduler.ScheduleEntry{
			{Runtime: 10 * time.Millisecond, Providers: []scheduler.Provider{{DomainHandle: handle, VCPUID: 0}}},
		},
	}
	base := time.Now()
	require.NoError(t, s.SetSchedule(base, sched))

	d := s.DoSchedule(base, 0, false)
	assert.Nil(t, d.VCPU)
}
