package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dornerworks/a653sched/internal/config"
	"github.com/dornerworks/a653sched/scheduler/arinctl"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Get or set the global ARINC 653 timetable",
}

var scheduleFile string

var scheduleGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the currently installed schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		got, err := client.ScheduleOp(arinctl.OpGet, nil, nil, nil)
		if err != nil {
			return err
		}
		fmt.Printf("major_frame: %s\n", got.MajorFrame)
		for i, e := range got.Entries {
			fmt.Printf("entry[%d]: service_id=%d runtime=%s providers=%d\n",
				i, e.ServiceID, e.Runtime, len(e.Providers))
		}
		return nil
	},
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Install a new schedule from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scheduleFile == "" {
			return fmt.Errorf("schedule set: --file is required")
		}
		doc, err := config.LoadSchedule(scheduleFile)
		if err != nil {
			return err
		}
		if _, err := client.ScheduleOp(arinctl.OpPut, nil, nil, &doc); err != nil {
			return err
		}
		fmt.Println("schedule installed")
		return nil
	},
}

func init() {
	scheduleSetCmd.Flags().StringVarP(&scheduleFile, "file", "f", "", "path to a YAML schedule document")
	scheduleCmd.AddCommand(scheduleGetCmd)
	scheduleCmd.AddCommand(scheduleSetCmd)
}
