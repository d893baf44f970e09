// Package cli implements a command-line client for the eviction service
// quota API.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/eviction/client"
)

const defaultEvictionAddr = "http://localhost:7104"

// CLIClient is the eviction client interface that includes CLI handling.
type CLIClient interface {
	Exec() error
}

// Implements CLIClient - basic
type simpleCLIClient struct {
	rootCmd *cobra.Command

	addr string
	ops  eviction.Operations
}

func (c *simpleCLIClient) Exec() error {
	return c.rootCmd.Execute()
}

func NewSimpleCLIClient() (CLIClient, error) {
	c := &simpleCLIClient{}
	// c.addr is populated by flag

	c.rootCmd = &cobra.Command{
		Use:   "relocl",
		Short: "relocl is a command-line client to the eviction quota service",
		Run:   func(*cobra.Command, []string) {},
	}

	c.addCmd(&systemQuotaCmd{})
	c.addCmd(&jobQuotaCmd{})

	return c, nil
}

func (c *simpleCLIClient) dial() eviction.Operations {
	if c.ops == nil {
		if c.addr == "" {
			c.addr = defaultEvictionAddr
		}
		c.ops = client.MakeHTTPOperations(c.addr)
	}
	return c.ops
}

func (c *simpleCLIClient) addCmd(cmd command) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.Flags().StringVar(&c.addr, "addr", "", "eviction service address")
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.rootCmd.AddCommand(cobraCmd)
}

type command interface {
	registerFlags() *cobra.Command
	run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error
}
