// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"earshot/internal/audio"
	applog "earshot/internal/log"
	"earshot/internal/recognition"
	"earshot/internal/report"
	"earshot/internal/transport"

	"github.com/spf13/cobra"
)

func newRecognizeCmd(opts *options) *cobra.Command {
	var (
		asJSON       bool
		progressAddr string
		noStore      bool
	)

	cmd := &cobra.Command{
		Use:   "recognize <file.wav>",
		Short: "Extract features from a WAV file and print the fused recognition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			path := args[0]

			buf, err := audio.DecodeFile(path)
			if err != nil {
				return err
			}

			out, err := newTransports(cfg, progressAddr)
			if err != nil {
				return err
			}
			defer out.Close()

			orch := newOrchestrator(cfg)
			defer orch.Close()

			onProgress := func(p recognition.Progress) {
				if err := out.Send(transport.NewEvent(transport.EventProgress, p)); err != nil {
					applog.Debugf("progress not delivered: %v", err)
				}
				if opts.verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %-18s %s\n", p.Progress, p.Stage, p.Message)
				}
			}

			res, err := orch.Recognize(cmd.Context(), buf, onProgress)
			if err != nil {
				_ = out.Send(transport.NewEvent(transport.EventError, err.Error()))
				return err
			}
			if err := out.Send(transport.NewEvent(transport.EventResult, res)); err != nil {
				applog.Warnf("result not delivered to every transport: %v", err)
			}

			if !noStore {
				hist, err := openStore(cfg)
				if err != nil {
					applog.Warnf("history unavailable: %v", err)
				} else if hist != nil {
					if _, err := hist.Save(cmd.Context(), filepath.Base(path), res); err != nil {
						applog.Warnf("could not store result: %v", err)
					}
					hist.Close()
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.Result(res))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&progressAddr, "progress-addr", "",
		"Serve progress events over WebSocket on this address (e.g. 127.0.0.1:8765)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not save the result to the history database")
	return cmd
}
