package cmd

import (
	"fmt"

	"github.com/jsphweid/saychord/midi"
	"github.com/jsphweid/saychord/synth"
	"github.com/spf13/cobra"
)

var importSaveName string

func init() {
	importCmd.Flags().StringVar(&importSaveName, "save", "", "save the imported sequence under this name")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import file.mid",
	Short: "Reads a sequence back from a MIDI file",
	Long: `Reads tempo, meter and chord note groups from a Standard MIDI File and
matches each group against the catalog by its notes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp, err := midi.ReadFile(args[0])
		if err != nil {
			return err
		}
		sess, err := openSession(cmd.Context(), synth.Log{}, importSaveName != "")
		if err != nil {
			return err
		}
		unknown, err := sess.ImportMIDI(imp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		res := sequenceResponse(sess)
		for i, c := range res.Chords {
			fmt.Fprintf(out, "%3d %v %v\n", i, c.Name, c.Notes)
		}
		fmt.Fprintf(out, "tempo %v, %v/4, %v unknown note groups\n", res.Transport.Tempo, res.Transport.TimeSignature, unknown)

		if importSaveName != "" {
			if _, err := sess.Save(cmd.Context(), importSaveName); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved as %q\n", importSaveName)
		}
		return nil
	},
}
