// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"

	"earshot/internal/report"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored recognitions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := openStore(opts.cfg)
			if err != nil {
				return err
			}
			if hist == nil {
				return errors.New("history store is disabled in the configuration")
			}
			defer hist.Close()

			records, err := hist.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.History(records))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of recognitions to show")
	return cmd
}
