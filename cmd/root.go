package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

var flushSentry = func() {}

var rootCmd = &cobra.Command{
	Use:   "saychord",
	Short: "Turns spoken chord names into a playable sequence",
	Long: `saychord resolves French and English chord phrases against a chord
catalog and plays the resulting sequence one measure per chord.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Could not read .env file: %v", err)
		}
		logger.SetDebug(constants.IsDebug())

		flush, err := logger.InitSentry(constants.GetSentryDSN(), constants.GetEnvironment(), releaseVersion)
		if err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		}
		flushSentry = flush
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	flushSentry()
	cobra.CheckErr(err)
}
