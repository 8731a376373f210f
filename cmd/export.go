package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jsphweid/saychord/midi"
	"github.com/jsphweid/saychord/synth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportPath string

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "output file (default <uuid>.mid)")
	addTransportFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export phrase...",
	Short: "Writes chord phrases to a MIDI file",
	Long: `Resolves every phrase and writes the sequence as a Standard MIDI File,
one measure per chord. With --loop the sequence repeats to fill the loop
length.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), synth.Log{}, false)
		if err != nil {
			return err
		}
		chords := resolveAll(sess, args)
		if len(chords) == 0 {
			return errors.New("no phrase resolved to a chord")
		}
		if err := applyTransport(sess, transportFlags(cmd)); err != nil && !clamped(err) {
			return err
		}
		for _, c := range chords {
			if err := sess.Scheduler.AddChord(c); err != nil {
				return err
			}
		}

		path := exportPath
		if path == "" {
			path = uuid.New().String() + ".mid"
		}
		snap := sess.Scheduler.Snapshot()
		if err := midi.WriteFile(path, snap.Chords, snap.Transport); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %v chords to %v\n", len(snap.Chords), path)
		return nil
	},
}
