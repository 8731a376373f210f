package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/saychord/session"
	"github.com/jsphweid/saychord/synth"
	"github.com/spf13/cobra"
)

var resolveJSON bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print one JSON result per line")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [phrase...]",
	Short: "Resolves chord phrases",
	Long: `Resolves each argument as a spoken chord phrase. With no arguments,
every line of stdin is a phrase.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), synth.Log{}, false)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			for _, phrase := range args {
				if err := printResolved(cmd.OutOrStdout(), sess, phrase); err != nil {
					return err
				}
			}
			return nil
		}
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			phrase := strings.TrimSpace(scanner.Text())
			if phrase == "" {
				continue
			}
			if err := printResolved(cmd.OutOrStdout(), sess, phrase); err != nil {
				return err
			}
		}
		return scanner.Err()
	},
}

func printResolved(w io.Writer, sess *session.Session, phrase string) error {
	res := resolveResult(sess.Resolve(phrase), phrase)
	if resolveJSON {
		return json.NewEncoder(w).Encode(res)
	}
	if res.Chord == nil {
		_, err := fmt.Fprintf(w, "%q -> %v\n", phrase, res.Miss)
		return err
	}
	_, err := fmt.Fprintf(w, "%q -> %v %v (%v)\n", phrase, res.Chord.Name, res.Chord.Notes, res.Stage)
	return err
}

