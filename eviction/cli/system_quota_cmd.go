package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtask/relocation/eviction"
)

type systemQuotaCmd struct{}

func (c *systemQuotaCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "system_quota",
		Short: "GetSystemEvictionQuota",
	}
}

func (c *systemQuotaCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	quota, err := cl.dial().GetEvictionQuota(eviction.SystemReference())
	if err != nil {
		return fmt.Errorf("error getting system eviction quota: %v", err)
	}

	fmt.Println("System eviction quota: ", quota)
	return nil
}
