package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dornerworks/a653sched/scheduler"
	"github.com/dornerworks/a653sched/scheduler/arinctl"
)

// sched and client are process-local: a653ctl talks to an in-process
// scheduler instance rather than dialing a running hypervisor, so operators
// can exercise the configuration surface (and script against it) without a
// real host binding. A real deployment would swap client's transport for
// one that marshals these same calls across a socket to the hypervisor.
var (
	sched  = scheduler.New(mustLogger(), nil, nil)
	client = arinctl.New(sched, mustLogger())
)

func mustLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

var rootCmd = &cobra.Command{
	Use:   "a653ctl",
	Short: "Operator CLI for an ARINC 653 partition scheduler instance",
	Long: `a653ctl drives the schedule and per-domain adjust configuration
surface of an ARINC 653 partition scheduler: installing a timetable,
reading it back, and setting a domain's parent/health state.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(domainCmd)
}
