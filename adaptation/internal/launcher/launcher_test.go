package launcher

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveNoArguments(t *testing.T) {
	cfg := Resolve(nil)
	require.Equal(t, "snow", cfg.Corruption)
	require.Equal(t, "bnm", cfg.Method)
	require.Equal(t, "100000", cfg.NumSample)
}

func TestResolveSingleArgumentIgnored(t *testing.T) {
	// one argument is not enough: everything stays defaulted
	cfg := Resolve([]string{"fog"})
	require.Equal(t, "snow", cfg.Corruption)
	require.Equal(t, "bnm", cfg.Method)
	require.Equal(t, "100000", cfg.NumSample)
}

func TestResolvePassthrough(t *testing.T) {
	cfg := Resolve([]string{"fog", "gn", "500"})
	require.Equal(t, "fog", cfg.Corruption)
	require.Equal(t, "gn", cfg.Method)
	require.Equal(t, "500", cfg.NumSample)
}

func TestResolveTwoArgumentsLeaveNumSampleEmpty(t *testing.T) {
	cfg := Resolve([]string{"fog", "gn"})
	require.Equal(t, "fog", cfg.Corruption)
	require.Equal(t, "gn", cfg.Method)
	require.Empty(t, cfg.NumSample)
}

func TestResolveConstants(t *testing.T) {
	for _, args := range [][]string{nil, {"fog"}, {"fog", "gn"}, {"fog", "gn", "500"}} {
		cfg := Resolve(args)
		require.Equal(t, "cifar10", cfg.Dataset)
		require.Equal(t, 5, cfg.Level)
		require.Equal(t, 0.001, cfg.LearningRate)
		require.Equal(t, 128, cfg.BatchSize)
		require.Equal(t, 12, cfg.Workers)
	}
}

func TestResolveDataRootFromEnv(t *testing.T) {
	t.Setenv("DATADIR", "/mnt/datasets")
	cfg := Resolve(nil)
	require.Equal(t, "/mnt/datasets", cfg.DataRoot)
}

func TestSummaryDefaults(t *testing.T) {
	summary := Resolve(nil).Summary()
	require.Contains(t, summary, "CORRUPT=snow\n")
	require.Contains(t, summary, "METHOD=bnm\n")
	require.Contains(t, summary, "NSAMPLE=100000\n")
	require.Contains(t, summary, "LR=0.001\n")
	require.Contains(t, summary, "BATCH_SIZE=128\n")
}

func TestSummaryPassthrough(t *testing.T) {
	summary := Resolve([]string{"fog", "gn", "500"}).Summary()
	require.Contains(t, summary, "CORRUPT=fog\n")
	require.Contains(t, summary, "METHOD=gn\n")
	require.Contains(t, summary, "NSAMPLE=500\n")
}

func TestArgsFlagVector(t *testing.T) {
	t.Setenv("DATADIR", "/mnt/datasets")
	args := Resolve([]string{"fog", "gn", "500"}).Args()

	joined := " " + strings.Join(args, " ") + " "
	require.Contains(t, joined, " --dataroot /mnt/datasets ")
	require.Contains(t, joined, " --corruption fog ")
	require.Contains(t, joined, " --level 5 ")
	require.Contains(t, joined, " --workers 12 ")
	require.Contains(t, joined, " --batch_size 128 ")
	require.Contains(t, joined, " --lr 0.001 ")
	require.Contains(t, joined, " --num_sample 500 ")
	require.Contains(t, joined, " --tsne ")

	// the method is never forwarded as a flag
	require.NotContains(t, joined, "--method")
	require.NotContains(t, joined, " gn ")
}

func TestArgsEmptyNumSampleLeavesBareFlag(t *testing.T) {
	args := Resolve([]string{"fog", "gn"}).Args()

	var i int
	for ; i < len(args); i++ {
		if args[i] == "--num_sample" {
			break
		}
	}
	require.Less(t, i, len(args))
	require.Equal(t, "--tsne", args[i+1])
}

func TestArgsTSNEIsLast(t *testing.T) {
	args := Resolve(nil).Args()
	require.Equal(t, "--tsne", args[len(args)-1])
}

func TestCommandExtendsPythonPath(t *testing.T) {
	t.Setenv("PYTHONPATH", "/opt/lib")

	l := New()
	l.Dir = "/work"
	cmd := l.Command(context.Background(), Resolve(nil))

	var pythonPath string
	for _, kv := range cmd.Env {
		if strings.HasPrefix(kv, "PYTHONPATH=") {
			pythonPath = kv
		}
	}
	require.Equal(t, "PYTHONPATH=/opt/lib:/work", pythonPath)
}

func TestCommandInvokesScript(t *testing.T) {
	l := New()
	cmd := l.Command(context.Background(), Resolve(nil))
	require.Equal(t, "python", cmd.Args[0])
	require.Equal(t, "bnm.py", cmd.Args[1])
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(os.ErrNotExist))
}
