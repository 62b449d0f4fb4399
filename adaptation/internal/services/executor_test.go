package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/763021701/ttt-plus-plus/adaptation/config"
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Defaults: config.Defaults{
			Dataset:      "cifar10",
			Level:        5,
			LearningRate: 0.001,
			BatchSize:    128,
			Workers:      12,
		},
		DataRoot: "/mnt/datasets",
	}
	return cfg
}

func TestEvaluationConfig(t *testing.T) {
	run := &schema.Run{Corruption: "fog", Method: "tent", NumSample: "500"}
	rc := evaluationConfig(testConfig(), run, "/tmp/run-1")

	require.Equal(t, "fog", rc.Corruption)
	require.Equal(t, "tent", rc.Method)
	require.Equal(t, "500", rc.NumSample)
	require.Equal(t, "/mnt/datasets", rc.DataRoot)
	require.Equal(t, "results/cifar10_joint_resnet50", rc.ResumePath)
	require.Equal(t, "/tmp/run-1/output", rc.OutputPath)
	require.Equal(t, 5, rc.Level)
	require.Equal(t, 128, rc.BatchSize)
}

func TestEvaluationConfigEmptyNumSample(t *testing.T) {
	run := &schema.Run{Corruption: "fog", Method: "gn"}
	rc := evaluationConfig(testConfig(), run, "/tmp/run-2")
	require.Empty(t, rc.NumSample)

	args := rc.Args()
	require.Equal(t, "--tsne", args[len(args)-1])
	require.Equal(t, "--num_sample", args[len(args)-2])
}

func TestScriptFor(t *testing.T) {
	require.Equal(t, "bnm.py", scriptFor("bnm"))
	require.Equal(t, "tent.py", scriptFor("tent"))
	// unknown methods still launch the bnm script
	require.Equal(t, "bnm.py", scriptFor("gn"))
}
