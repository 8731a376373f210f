package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFieldsSortsKeys(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("", formatFields(nil))
	assert.Equal(`{a=1, b="x", c=0.50}`, formatFields(Fields{"c": 0.5, "a": 1, "b": "x"}))
}

func TestDebugIsSilentUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	defer SetDebug(false)

	assert := assert.New(t)
	Debug("hidden", nil)
	assert.Empty(buf.String())

	SetDebug(true)
	Debug("shown", Fields{"k": "v"})
	assert.Contains(buf.String(), `[DEBUG] shown {k="v"}`)
}
