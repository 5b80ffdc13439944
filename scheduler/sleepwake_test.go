package scheduler_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dornerworks/a653sched/scheduler"
	"github.com/dornerworks/a653sched/scheduler/host/fake"
)

func TestWake_IsIdempotent(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	v := s.InsertVCPU(uuid.New(), 1, 0)

	s.Wake(v, 0)
	assert.True(t, v.Awake())
	s.Wake(v, 0)
	assert.True(t, v.Awake())
}

func TestSleep_IsIdempotent(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	v := s.InsertVCPU(uuid.New(), 1, 0)
	s.Wake(v, 0)

	s.Sleep(v, 0, 0)
	assert.False(t, v.Awake())
	s.Sleep(v, 0, 0)
	assert.False(t, v.Awake())
}

func TestWake_RaisesScheduleInterruptOnTheVCPUsCPU(t *testing.T) {
	h := fake.New()
	s := scheduler.New(nil, h, nil)
	v := s.InsertVCPU(uuid.New(), 1, 0)

	s.Wake(v, 2)
	assert.Equal(t, []int{2}, h.Interrupts)
}

func TestSleep_RaisesInterruptOnlyWhenCurrentlyRunning(t *testing.T) {
	h := fake.New()
	s := scheduler.New(nil, h, nil)
	v := s.InsertVCPU(uuid.New(), 1, 0)

	s.Sleep(v, 0, 1) // not running on cpu 1
	assert.Empty(t, h.Interrupts)

	s.Sleep(v, 2, 2) // currently running on cpu 2
	assert.Equal(t, []int{2}, h.Interrupts)
}

func TestSleep_OnNilVCPUIsANoop(t *testing.T) {
	s := scheduler.New(nil, nil, nil)
	assert.NotPanics(t, func() { s.Sleep(nil, 0, 0) })
	assert.NotPanics(t, func() { s.Wake(nil, 0) })
}
