package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("req_id", "abc").Warn("upstream slow", "elapsed_ms", 1200)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream slow", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["req_id"])
	assert.EqualValues(t, 1200, entries[0].ContextMap()["elapsed_ms"])
}
