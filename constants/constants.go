package constants

import (
	"os"
	"strings"
)

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func GetCatalogPath() string {
	return getEnv("CATALOG_PATH", "./chord-dictionary.json")
}

// GetCatalogURL returns the URL the catalog is fetched from. Empty means the
// catalog is read from GetCatalogPath or S3.
func GetCatalogURL() string {
	return getEnv("CATALOG_URL", "")
}

func GetCatalogS3Location() (bucket string, key string) {
	return getEnv("CATALOG_S3_BUCKET", ""), getEnv("CATALOG_S3_KEY", "chord-dictionary.json")
}

func GetStorePath() string {
	return getEnv("STORE_PATH", "./saychord-sequences.json")
}

// GetDynamoTable returns the DynamoDB table for saved sequences. Empty means
// sequences are stored in the file at GetStorePath.
func GetDynamoTable() string {
	return getEnv("DYNAMO_TABLE", "")
}

func GetDynamoEndpoint() string {
	return getEnv("DYNAMO_ENDPOINT", "")
}

func GetAWSRegion() string {
	return getEnv("AWS_REGION", "us-east-1")
}

func GetAutosaveName() string {
	return getEnv("AUTOSAVE_NAME", "autosave")
}

func GetPort() string {
	return getEnv("PORT", "8080")
}

func GetSentryDSN() string {
	return getEnv("SENTRY_DSN", "")
}

func GetEnvironment() string {
	return getEnv("ENVIRONMENT", "development")
}

func IsDebug() bool {
	return strings.EqualFold(getEnv("LOG_LEVEL", "info"), "debug")
}

func GetMidiOut() string {
	return getEnv("MIDI_OUT", "")
}

const (
	MinTempo     = 40
	MaxTempo     = 240
	DefaultTempo = 120

	DefaultTimeSignature = 4
	DefaultLoopLength    = 4

	// DefaultOctave is used for pitches written without an octave digit.
	DefaultOctave = 4

	// PreviewSeconds is the length of a single chord preview.
	PreviewSeconds = 2
)

// TimeSignatures are the supported beats per measure.
var TimeSignatures = []int{3, 4}

// LoopLengths are the supported loop lengths in measures.
var LoopLengths = []int{4, 8, 16, 24}
