package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput_DebugGate(t *testing.T) {
	defer SetOutput(os.Stderr, false)

	var buf bytes.Buffer
	SetOutput(AsSyncWriter(&buf), false)
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	SetOutput(AsSyncWriter(&buf), true)
	Debugf("visible %d", 3)
	assert.Contains(t, buf.String(), "visible 3")
}

func TestAsSyncWriter_KeepsSyncWriters(t *testing.T) {
	assert.Equal(t, SyncWriter(os.Stderr), AsSyncWriter(os.Stderr))
	assert.NoError(t, Discard.Sync())
}
