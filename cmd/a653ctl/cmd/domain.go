package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dornerworks/a653sched/scheduler"
	"github.com/dornerworks/a653sched/scheduler/arinctl"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Get or set a domain's parent/health adjustment",
}

var (
	domainID      int
	domainParent  int
	domainHealthy bool
)

var domainGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a domain's current parent/health state",
	RunE: func(cmd *cobra.Command, args []string) error {
		adj, err := client.DomainOp(arinctl.OpGet, scheduler.DomainID(domainID), scheduler.DomainAdjustment{})
		if err != nil {
			return err
		}
		role := "backup"
		if adj.Parent == scheduler.DomainID(domainID) {
			role = "primary"
		}
		fmt.Printf("domain[%d]: parent=%d role=%s healthy=%t\n", domainID, adj.Parent, role, adj.Healthy)
		return nil
	},
}

var domainSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Adjust a domain's parent and health",
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := scheduler.NoParentChange
		if cmd.Flags().Changed("parent") {
			parent = scheduler.DomainID(domainParent)
		}
		adj, err := client.DomainOp(arinctl.OpPut, scheduler.DomainID(domainID), scheduler.DomainAdjustment{
			Parent:  parent,
			Healthy: domainHealthy,
		})
		if err != nil {
			return err
		}
		fmt.Printf("domain[%d]: parent=%d healthy=%t\n", domainID, adj.Parent, adj.Healthy)
		return nil
	},
}

func init() {
	domainCmd.PersistentFlags().IntVar(&domainID, "id", 0, "domain id")
	domainSetCmd.Flags().IntVar(&domainParent, "parent", -1, "parent domain id (omit to leave unchanged)")
	domainSetCmd.Flags().BoolVar(&domainHealthy, "healthy", true, "operator-asserted health")
	domainCmd.AddCommand(domainGetCmd)
	domainCmd.AddCommand(domainSetCmd)
}
