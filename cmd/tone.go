// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"time"

	"earshot/internal/audio"
	"earshot/pkg/utils"

	"github.com/spf13/cobra"
)

func newToneCmd() *cobra.Command {
	var (
		frequency  float64
		amplitude  float64
		duration   time.Duration
		sampleRate float64
		bitDepth   int
		noise      bool
	)

	cmd := &cobra.Command{
		Use:   "tone <out.wav>",
		Short: "Write a synthetic test signal to a WAV file",
		Args:  cobra.ExactArgs(1),
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			n := int(duration.Seconds() * sampleRate)
			if n <= 0 {
				return fmt.Errorf("duration %s at %.0f Hz yields no samples", duration, sampleRate)
			}

			var samples []float64
			if noise {
				samples = utils.GenerateNoise(n, amplitude, uint64(time.Now().UnixNano()))
			} else {
				samples = utils.GenerateSineWave(n, sampleRate, frequency, amplitude)
			}
			buf, err := audio.NewBuffer(sampleRate, samples)
			if err != nil {
				return err
			}
			if err := audio.WriteWAVFile(args[0], buf, bitDepth); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d-bit, %.0f Hz)\n",
				args[0], buf.Duration(), bitDepth, sampleRate)
			return err
		},
	}

	cmd.Flags().Float64VarP(&frequency, "frequency", "f", 440, "Sine frequency in Hz")
	cmd.Flags().Float64VarP(&amplitude, "amplitude", "a", 0.5, "Peak amplitude in (0, 1]")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 2*time.Second, "Signal length")
	cmd.Flags().Float64VarP(&sampleRate, "sample-rate", "s", 44100, "Sample rate, measured in Hertz (Hz)")
	cmd.Flags().IntVarP(&bitDepth, "bit-depth", "b", 16, "PCM bit depth (8, 16, 24 or 32)")
	cmd.Flags().BoolVar(&noise, "noise", false, "Write white noise instead of a sine")
	return cmd
}
