// SPDX-License-Identifier: MIT
package cmd

import (
	"earshot/internal/build"
	applog "earshot/internal/log"
	"earshot/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve recognition tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := newOrchestrator(opts.cfg)
			defer orch.Close()

			var history mcpserver.History
			hist, err := openStore(opts.cfg)
			if err != nil {
				applog.Warnf("history unavailable: %v", err)
			} else if hist != nil {
				defer hist.Close()
				history = hist
			}

			info := build.GetBuildFlags()
			return mcpserver.New(orch, history).ServeStdio(info.Name, info.Version)
		},
	}
}
