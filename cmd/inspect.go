package cmd

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/jsphweid/saychord/normalize"
	"github.com/jsphweid/saychord/synth"
	"github.com/spf13/cobra"
)

var inspectDump bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectDump, "dump", false, "dump full definitions")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [tonality]",
	Short: "Inspects the chord catalog",
	Long:  `Lists the catalog's tonalities and chords with their lookup keys.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), synth.Log{}, false)
		if err != nil {
			return err
		}
		cat := sess.Catalog()
		out := cmd.OutOrStdout()

		tonalities := cat.Tonalities()
		if len(args) == 1 {
			tonalities = []string{args[0]}
		}
		for _, tonality := range tonalities {
			defs := cat.InTonality(tonality)
			if len(defs) == 0 {
				return fmt.Errorf("no chords in tonality %q", tonality)
			}
			fmt.Fprintf(out, "%v (%v chords)\n", tonality, len(defs))
			if inspectDump {
				spew.Fdump(out, defs)
				continue
			}
			for _, def := range defs {
				keys := make([]string, 0, len(def.Names()))
				for _, name := range def.Names() {
					keys = append(keys, normalize.Key(name))
				}
				fmt.Fprintf(out, "  %v %v keys: %v\n", def.CanonicalName, def.Pitches, strings.Join(keys, ", "))
			}
		}

		for _, c := range cat.Collisions() {
			fmt.Fprintf(out, "collision: %q kept by %v, ignored for %v\n", c.Key, c.Kept, c.Ignored)
		}
		return nil
	},
}
