package results

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleLog = `[2024-05-01T10:00:00Z] creating run....
Resuming from results/cifar10_joint_resnet50...
Running...
Test-time adaptation: BNM
Error (%)		test		bnm
Epoch 0/500:            31.25
Epoch 1/500 (40s):      26.56           0.2656
Epoch 2/500 (41s):      24.61           0.2461
Epoch 3/500 (39s):      25.00           0.2500
Termination: 24.61
[2024-05-01T11:00:00Z] Run finished
`

func TestParse(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	require.Len(t, result.Records, 4)
	require.Equal(t, 0, result.Records[0].Epoch)
	require.Equal(t, 500, result.Records[0].MaxEpoch)
	require.Equal(t, 31.25, result.Records[0].TestError)
	require.Zero(t, result.Records[0].Seconds)

	require.Equal(t, 1, result.Records[1].Epoch)
	require.Equal(t, 40.0, result.Records[1].Seconds)
	require.Equal(t, 26.56, result.Records[1].TestError)
	require.Equal(t, 0.2656, result.Records[1].Loss)

	require.True(t, result.Terminated)
	require.Equal(t, 24.61, result.TerminationError)
}

func TestParseEmpty(t *testing.T) {
	result, err := Parse(strings.NewReader("nothing of interest\n"))
	require.NoError(t, err)
	require.Empty(t, result.Records)
	require.False(t, result.Terminated)
}

func TestStats(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	stats := result.Stats()
	require.Equal(t, 4, stats.Epochs)
	require.Equal(t, 25.00, stats.FinalError)
	require.Equal(t, 24.61, stats.BestError)
	require.Equal(t, 2, stats.BestEpoch)
	require.InDelta(t, 26.855, stats.MeanError, 1e-9)
}

func TestStatsEmpty(t *testing.T) {
	result := &RunResult{}
	require.Zero(t, result.Stats())
}

func TestShouldStop(t *testing.T) {
	// error 3 epochs back (23.0) beats everything since
	errs := []float64{30, 28, 23, 25, 24.5}
	require.True(t, ShouldStop(errs, 5, 3))

	// still improving
	errs = []float64{30, 28, 25, 24, 23}
	require.False(t, ShouldStop(errs, 5, 3))

	// too early in the run
	require.False(t, ShouldStop([]float64{30, 28}, 2, 3))
}

func TestAdaptationErrors(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)

	// the epoch-0 record is the baseline evaluation, not an adaptation
	// epoch
	require.Equal(t, []float64{26.56, 24.61, 25.00}, result.AdaptationErrors())
}

func TestShouldStopCountsFromEpochOne(t *testing.T) {
	log := `Epoch 0/500:            50.00
Epoch 1/500 (40s):      2.00            0.0200
Epoch 2/500 (40s):      10.00           0.1000
Epoch 3/500 (40s):      11.00           0.1100
Epoch 4/500 (40s):      12.00           0.1200
`
	result, err := Parse(strings.NewReader(log))
	require.NoError(t, err)

	// four adaptation epochs is still inside the warm-up guard; only a
	// series padded with the baseline record would fire here
	errs := result.AdaptationErrors()
	require.Len(t, errs, 4)
	require.False(t, ShouldStop(errs, len(errs), 3))

	result, err = Parse(strings.NewReader(log + "Epoch 5/500 (40s):      13.00           0.1300\n"))
	require.NoError(t, err)

	errs = result.AdaptationErrors()
	require.True(t, ShouldStop(errs, len(errs), 3))
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()

	result, err := Parse(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.NoError(t, result.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, result.Records, loaded.Records)
	require.Equal(t, result.Terminated, loaded.Terminated)
	require.Equal(t, result.TerminationError, loaded.TerminationError)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
