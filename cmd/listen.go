package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/synth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

const settleDelay = 120 * time.Millisecond

var (
	midiInPort int
	recordName string
)

func init() {
	listenCmd.Flags().IntVar(&midiInPort, "port", 0, "midi in port number")
	listenCmd.Flags().StringVar(&recordName, "record", "", "append recognized chords and save them under this name on exit")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Names chords played on a MIDI keyboard",
	Long: `Listens to a MIDI in port and looks up the held notes in the catalog
once they settle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()
		in, err := midi.InPort(midiInPort)
		if err != nil {
			return errors.Wrapf(err, "could not find midi in port %v", midiInPort)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		sess, err := openSession(ctx, synth.Log{}, recordName != "")
		if err != nil {
			return err
		}

		held := newHeldNotes()
		settle := debounce.New(settleDelay)
		out := cmd.OutOrStdout()
		lookup := func() {
			notes := held.notes()
			if len(notes) == 0 {
				return
			}
			def, err := sess.Catalog().FindByNotes(notes)
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintf(out, "%v: unknown\n", chord.CreateChordKey(notes))
				return
			}
			if err != nil {
				logger.Error("Chord lookup failed", err, nil)
				return
			}
			fmt.Fprintf(out, "%v: %v\n", chord.CreateChordKey(notes), def.CanonicalName)
			if recordName != "" {
				c := &model.ResolvedChord{Definition: def, RawText: def.CanonicalName}
				if err := sess.Scheduler.AddChord(c); err != nil {
					logger.Error("Could not append chord", err, nil)
				}
			}
		}

		stopListening, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				held.press(key)
				settle(lookup)
			case msg.GetNoteEnd(&ch, &key):
				held.release(key)
			}
		})
		if err != nil {
			return errors.Wrap(err, "could not listen to midi in port")
		}
		logger.Info("Listening", logger.Fields{"port": in.String()})

		<-ctx.Done()
		stopListening()

		if recordName != "" && sess.Scheduler.Len() > 0 {
			if _, err := sess.Save(cmd.Context(), recordName); err != nil {
				return err
			}
		}
		return nil
	},
}

// heldNotes tracks the keys currently down.
type heldNotes struct {
	mu   sync.Mutex
	keys map[uint8]bool
}

func newHeldNotes() *heldNotes {
	return &heldNotes{keys: map[uint8]bool{}}
}

func (h *heldNotes) press(key uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys[key] = true
}

func (h *heldNotes) release(key uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.keys, key)
}

func (h *heldNotes) notes() model.Notes {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := make(model.Notes, 0, len(h.keys))
	for k := range h.keys {
		res = append(res, k)
	}
	return res
}
