package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtask/relocation/eviction"
)

type jobQuotaCmd struct{}

func (c *jobQuotaCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "job_quota",
		Short: "GetJobEvictionQuota",
	}
}

func (c *jobQuotaCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("a job id must be provided")
	}
	jobID := args[0]

	quota, ok, err := cl.dial().FindEvictionQuota(eviction.JobReference(jobID))
	if err != nil {
		return fmt.Errorf("error getting eviction quota for job %s: %v", jobID, err)
	}
	if !ok {
		fmt.Println("No eviction quota record for job ", jobID)
		return nil
	}

	fmt.Println("Job eviction quota: ", quota)
	return nil
}
