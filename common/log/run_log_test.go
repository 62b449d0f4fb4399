package log

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRunLoggerRoundTrip(t *testing.T) {
	l := NewRunLogger(t.TempDir())
	id := uuid.New()

	require.NoError(t, l.WriteToLogFile(&id, "first entry\n"))
	require.NoError(t, l.WriteToLogFile(&id, "second entry\n"))

	content, err := l.ReadLogFile(&id)
	require.NoError(t, err)
	require.Contains(t, content, "first entry")
	require.Contains(t, content, "second entry")

	require.NoError(t, l.CleanupRunDir(&id))
	_, err = l.ReadLogFile(&id)
	require.Error(t, err)
}

func TestRunLoggerRawAppend(t *testing.T) {
	l := NewRunLogger(t.TempDir())
	id := uuid.New()

	f, err := l.OpenLogFile(&id)
	require.NoError(t, err)
	_, err = f.WriteString("Epoch 1/500 (40s):      26.56\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, err := l.ReadLogFile(&id)
	require.NoError(t, err)
	// raw appends carry no timestamp prefix
	require.Equal(t, "Epoch 1/500 (40s):      26.56\n", content)
}
