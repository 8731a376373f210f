package cmd

import (
	"os"
	"os/signal"

	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/synth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var midiOutName string

func init() {
	playCmd.Flags().StringVar(&midiOutName, "midi-out", "", "midi out port (overrides MIDI_OUT, default first port)")
	addTransportFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play phrase...",
	Short: "Plays chord phrases on a MIDI out port",
	Long: `Resolves every phrase into a sequence and plays it one measure per
chord. Without --loop playback ends after the last chord; with it, until
interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()

		name := midiOutName
		if name == "" {
			name = constants.GetMidiOut()
		}
		out, err := synth.OpenPort(name)
		if err != nil {
			return err
		}
		player := synth.NewMIDIOut(out)
		defer player.StopAll()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sess, err := openSession(ctx, player, false)
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

		done := make(chan struct{})
		sess.Scheduler.OnStop(func() { close(done) })
		for _, c := range chords {
			if err := sess.Scheduler.AddChord(c); err != nil {
				return err
			}
		}
		if err := sess.Scheduler.Play(); err != nil {
			return err
		}
		logger.Info("Playing", logger.Fields{"chords": len(chords), "port": out.String()})

		select {
		case <-done:
		case <-ctx.Done():
			sess.Scheduler.Stop()
		}
		return nil
	},
}

var (
	flagTempo      int
	flagSignature  int
	flagLoop       bool
	flagLoopLength int
)

func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagTempo, "tempo", constants.DefaultTempo, "tempo in beats per minute")
	cmd.Flags().IntVar(&flagSignature, "signature", constants.DefaultTimeSignature, "beats per measure (3 or 4)")
	cmd.Flags().BoolVar(&flagLoop, "loop", false, "loop the sequence")
	cmd.Flags().IntVar(&flagLoopLength, "loop-length", constants.DefaultLoopLength, "loop length in measures (4, 8, 16 or 24)")
}

// transportFlags returns the transport flags that were set explicitly.
func transportFlags(cmd *cobra.Command) model.TransportRequestBody {
	var t model.TransportRequestBody
	if cmd.Flags().Changed("tempo") {
		t.Tempo = &flagTempo
	}
	if cmd.Flags().Changed("signature") {
		t.TimeSignature = &flagSignature
	}
	if cmd.Flags().Changed("loop") {
		t.Looping = &flagLoop
	}
	if cmd.Flags().Changed("loop-length") {
		t.LoopLength = &flagLoopLength
	}
	return t
}
