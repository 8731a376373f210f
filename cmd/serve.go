package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/db"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/session"
	"github.com/jsphweid/saychord/synth"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

const shutdownTimeout = 5 * time.Second

var (
	servePort    string
	serveMIDIOut bool
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMIDIOut, "midi", false, "play on a MIDI out port (MIDI_OUT, default first port) instead of logging")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the sequencer over HTTP",
	Long: `Serves the resolution pipeline and the sequencer over HTTP. The chord
catalog loads in the background; until it is ready, resolution reports the
catalog as unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var player synth.Synth = synth.Log{}
		if serveMIDIOut {
			defer midi.CloseDriver()
			out, err := synth.OpenPort(constants.GetMidiOut())
			if err != nil {
				return err
			}
			m := synth.NewMIDIOut(out)
			defer m.StopAll()
			player = m
		}

		src, err := catalogSource()
		if err != nil {
			return err
		}
		store, err := db.FromEnv()
		if err != nil {
			return err
		}
		sess := session.New(session.Options{
			Source:       src,
			Synth:        player,
			Store:        store,
			AutosaveName: constants.GetAutosaveName(),
		})
		sess.Start(ctx)
		defer sess.Scheduler.Stop()

		port := servePort
		if port == "" {
			port = constants.GetPort()
		}
		server := &http.Server{Addr: ":" + port, Handler: NewServer(sess).Handler()}

		errs := make(chan error, 1)
		go func() {
			logger.Info("Serving", logger.Fields{"port": port, "catalog": src.String()})
			errs <- server.ListenAndServe()
		}()

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}
