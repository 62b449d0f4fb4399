// Package launcher resolves the configuration for a single adaptation run
// and starts the Python evaluation script with the derived flag set. It
// performs no validation of its own: an unset DATADIR, a missing script or
// a failing interpreter all surface as the child process failure.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultDataset      = "cifar10"
	DefaultCorruption   = "snow"
	DefaultMethod       = "bnm"
	DefaultNumSample    = "100000"
	DefaultLevel        = 5
	DefaultLearningRate = 0.001
	DefaultBatchSize    = 128
	DefaultWorkers      = 12

	DefaultScript = "bnm.py"
)

// RunConfig is the resolved parameter set for one evaluation run.
// NumSample is kept as a string: it is forwarded verbatim and may be
// empty when exactly two positional arguments were supplied.
type RunConfig struct {
	Dataset      string
	Corruption   string
	Level        int
	Method       string
	NumSample    string
	LearningRate float64
	BatchSize    int
	Workers      int
	DataRoot     string
	ResumePath   string
	OutputPath   string
}

// Resolve maps the positional arguments [corruption] [method] [num_sample]
// to a RunConfig. With fewer than two arguments every tunable field keeps
// its default, regardless of what the single argument was. With two or
// more, the first two are taken verbatim and num_sample stays empty unless
// a third argument is present.
func Resolve(args []string) RunConfig {
	cfg := RunConfig{
		Dataset:      DefaultDataset,
		Corruption:   DefaultCorruption,
		Level:        DefaultLevel,
		Method:       DefaultMethod,
		NumSample:    DefaultNumSample,
		LearningRate: DefaultLearningRate,
		BatchSize:    DefaultBatchSize,
		Workers:      DefaultWorkers,
		DataRoot:     os.Getenv("DATADIR"),
	}

	if len(args) >= 2 {
		cfg.Corruption = args[0]
		cfg.Method = args[1]
		cfg.NumSample = ""
		if len(args) > 2 {
			cfg.NumSample = args[2]
		}
	}

	cfg.ResumePath = filepath.Join("results", cfg.Dataset+"_joint_resnet50")
	cfg.OutputPath = filepath.Join("results", cfg.Dataset+"_"+cfg.Method)

	return cfg
}

// Summary lists the resolved fields in the form printed before dispatch.
func (c RunConfig) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DATASET=%s\n", c.Dataset)
	fmt.Fprintf(&b, "CORRUPT=%s\n", c.Corruption)
	fmt.Fprintf(&b, "LEVEL=%d\n", c.Level)
	fmt.Fprintf(&b, "METHOD=%s\n", c.Method)
	fmt.Fprintf(&b, "NSAMPLE=%s\n", c.NumSample)
	fmt.Fprintf(&b, "LR=%g\n", c.LearningRate)
	fmt.Fprintf(&b, "BATCH_SIZE=%d\n", c.BatchSize)
	return b.String()
}

// Args builds the script's flag vector. The method is deliberately not
// forwarded, matching the historical invocation, and an empty num_sample
// value is dropped from the vector the way unquoted shell expansion drops
// an empty word, leaving the bare flag.
func (c RunConfig) Args() []string {
	args := []string{
		"--dataroot", c.DataRoot,
		"--resume", c.ResumePath,
		"--outf", c.OutputPath,
		"--corruption", c.Corruption,
		"--level", strconv.Itoa(c.Level),
		"--workers", strconv.Itoa(c.Workers),
		"--batch_size", strconv.Itoa(c.BatchSize),
		"--lr", strconv.FormatFloat(c.LearningRate, 'g', -1, 64),
		"--num_sample",
	}
	if c.NumSample != "" {
		args = append(args, c.NumSample)
	}
	args = append(args, "--tsne")
	return args
}

// Launcher runs the evaluation script as a foreground child process.
type Launcher struct {
	Python string
	Script string
	// Dir is the child working directory; it is also appended to the
	// child's PYTHONPATH. Empty means the current directory.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func New() *Launcher {
	return &Launcher{
		Python: "python",
		Script: DefaultScript,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command assembles the child process without starting it.
func (l *Launcher) Command(ctx context.Context, cfg RunConfig) *exec.Cmd {
	cmd := exec.CommandContext(ctx, l.Python, append([]string{l.Script}, cfg.Args()...)...)
	cmd.Dir = l.Dir
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	workDir := l.Dir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	// export PYTHONPATH=$PYTHONPATH:<workdir>, leading colon included
	// when PYTHONPATH was unset.
	cmd.Env = append(os.Environ(), "PYTHONPATH="+os.Getenv("PYTHONPATH")+":"+workDir)

	return cmd
}

// Launch blocks until the child exits and returns its error unmodified.
func (l *Launcher) Launch(ctx context.Context, cfg RunConfig) error {
	return l.Command(ctx, cfg).Run()
}

// ExitCode maps a Launch error to the shell-style exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return 1
}

// Exited reports whether err comes from a child that ran and exited, as
// opposed to one that could not be started at all.
func Exited(err error) bool {
	_, ok := err.(*exec.ExitError)
	return ok
}
