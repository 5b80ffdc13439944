// Package arinctl wraps scheduler.Scheduler behind the PUTINFO/GETINFO
// configuration protocol an ARINC 653 control plane presents to operators:
// a global schedule adjust and a per-domain adjust, each with a get and a
// put direction. It is the layer cmd/a653ctl drives; the scheduler package
// itself never imports it.
package arinctl

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dornerworks/a653sched/scheduler"
)

var errUnknownOp = errors.New("arinctl: unknown op")

// Op distinguishes the get and put directions of both adjust commands, the
// Go equivalent of XEN_SYSCTL_SCHEDOP_{putinfo,getinfo} and
// XEN_DOMCTL_SCHEDOP_{putinfo,getinfo}.
type Op int

const (
	OpPut Op = iota
	OpGet
)

// CopyFunc models a copy-in or copy-out across the hypercall boundary. A
// real binding implements it against guest memory; tests supply one that
// fails on demand to exercise the FAULT path without needing real guest
// memory, per the injectable copy function called out in the design notes.
type CopyFunc func() error

// copyFailedError is wrapped into a KindFault scheduler.Error when a
// CopyFunc reports failure, the Go analogue of -EFAULT from
// copy_from_guest/copy_to_guest.
type copyFailedError struct{ cause error }

func (e *copyFailedError) Error() string { return "copy across hypercall boundary failed" }
func (e *copyFailedError) Unwrap() error { return e.cause }

// Client is the operator-facing handle onto one Scheduler instance's
// configuration surface.
type Client struct {
	sched *scheduler.Scheduler
	log   *zap.SugaredLogger
	now   func() time.Time
}

// New returns a Client driving sched. now defaults to time.Now.
func New(sched *scheduler.Scheduler, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{sched: sched, log: log, now: time.Now}
}

// ScheduleOp runs the global adjust command named by op. copyIn is invoked
// before a put takes effect and copyOut after a get succeeds, modeling the
// copy_from_guest/copy_to_guest calls that bracket arinc653_sched_set/get in
// the original hypercall handler; either may return an error to simulate a
// FAULT.
func (c *Client) ScheduleOp(op Op, copyIn, copyOut CopyFunc, sched *scheduler.Schedule) (scheduler.Schedule, error) {
	switch op {
	case OpPut:
		if copyIn != nil {
			if err := copyIn(); err != nil {
				return scheduler.Schedule{}, scheduler.NewFaultError("ScheduleOp", &copyFailedError{cause: err})
			}
		}
		if err := c.sched.SetSchedule(c.now(), *sched); err != nil {
			return scheduler.Schedule{}, err
		}
		return c.sched.GetSchedule(), nil

	case OpGet:
		got := c.sched.GetSchedule()
		if copyOut != nil {
			if err := copyOut(); err != nil {
				return scheduler.Schedule{}, scheduler.NewFaultError("ScheduleOp", &copyFailedError{cause: err})
			}
		}
		return got, nil

	default:
		return scheduler.Schedule{}, scheduler.NewInvalidError("ScheduleOp", errUnknownOp)
	}
}

// DomainOp runs the per-domain adjust command named by op for domain id.
func (c *Client) DomainOp(op Op, id scheduler.DomainID, adj scheduler.DomainAdjustment) (scheduler.DomainAdjustment, error) {
	switch op {
	case OpPut:
		if err := c.sched.AdjustDomainPut(id, adj); err != nil {
			return scheduler.DomainAdjustment{}, err
		}
		return c.sched.AdjustDomainGet(id)

	case OpGet:
		return c.sched.AdjustDomainGet(id)

	default:
		return scheduler.DomainAdjustment{}, scheduler.NewInvalidError("DomainOp", errUnknownOp)
	}
}
