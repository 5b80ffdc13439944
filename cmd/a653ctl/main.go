// Command a653ctl is an operator CLI for driving the configuration surface
// of an in-process ARINC 653 scheduler instance: installing and reading
// back the global timetable, and adjusting per-domain parent/health state.
package main

import (
	"fmt"
	"os"

	"github.com/dornerworks/a653sched/cmd/a653ctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
