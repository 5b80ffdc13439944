// Package config loads an operator-authored YAML schedule document into a
// scheduler.Schedule, using Viper the way the rest of the corpus's CLIs load
// their configuration files.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/dornerworks/a653sched/scheduler"
)

// ProviderDoc is one provider entry in a schedule YAML document.
type ProviderDoc struct {
	DomainHandle string `mapstructure:"domain_handle"`
	VCPUID       int    `mapstructure:"vcpu_id"`
}

// EntryDoc is one schedule entry in a schedule YAML document.
type EntryDoc struct {
	ServiceID int           `mapstructure:"service_id"`
	Runtime   time.Duration `mapstructure:"runtime"`
	Providers []ProviderDoc `mapstructure:"providers"`
}

// ScheduleDoc is the on-disk shape of a schedule file, e.g.:
//
//	major_frame: 100ms
//	entries:
//	  - service_id: 1
//	    runtime: 10ms
//	    providers:
//	      - domain_handle: "11111111-1111-1111-1111-111111111111"
//	        vcpu_id: 0
type ScheduleDoc struct {
	MajorFrame time.Duration `mapstructure:"major_frame"`
	Entries    []EntryDoc    `mapstructure:"entries"`
}

// LoadSchedule reads and parses a YAML schedule file at path into a
// scheduler.Schedule ready to pass to arinctl.Client.ScheduleOp.
func LoadSchedule(path string) (scheduler.Schedule, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return scheduler.Schedule{}, fmt.Errorf("read schedule file %q: %w", path, err)
	}

	var doc ScheduleDoc
	if err := v.Unmarshal(&doc); err != nil {
		return scheduler.Schedule{}, fmt.Errorf("parse schedule file %q: %w", path, err)
	}

	return doc.toSchedule()
}

func (d ScheduleDoc) toSchedule() (scheduler.Schedule, error) {
	sched := scheduler.Schedule{
		MajorFrame: d.MajorFrame,
		Entries:    make([]scheduler.ScheduleEntry, len(d.Entries)),
	}

	for i, e := range d.Entries {
		providers := make([]scheduler.Provider, len(e.Providers))
		for j, p := range e.Providers {
			handle, err := parseHandle(p.DomainHandle)
			if err != nil {
				return scheduler.Schedule{}, fmt.Errorf("entry %d provider %d: %w", i, j, err)
			}
			providers[j] = scheduler.Provider{DomainHandle: handle, VCPUID: p.VCPUID}
		}
		sched.Entries[i] = scheduler.ScheduleEntry{
			ServiceID: e.ServiceID,
			Runtime:   e.Runtime,
			Providers: providers,
		}
	}

	return sched, nil
}

func parseHandle(s string) (scheduler.DomainHandle, error) {
	if s == "" {
		return scheduler.BootstrapHandle, nil
	}
	h, err := uuid.Parse(s)
	if err != nil {
		return scheduler.DomainHandle{}, fmt.Errorf("invalid domain_handle %q: %w", s, err)
	}
	return h, nil
}
