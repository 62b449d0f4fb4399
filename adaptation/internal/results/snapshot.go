package results

import (
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const SnapshotFileName = "result.msgpack"

// SnapshotPath returns the result snapshot location inside a run directory.
func SnapshotPath(runDir string) string {
	return filepath.Join(runDir, SnapshotFileName)
}

// Save serializes the result to the run directory.
func (r *RunResult) Save(runDir string) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(SnapshotPath(runDir), data, 0644)
}

// Load reads a previously saved result snapshot.
func Load(runDir string) (*RunResult, error) {
	data, err := os.ReadFile(SnapshotPath(runDir))
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	if err := msgpack.Unmarshal(data, result); err != nil {
		return nil, err
	}
	return result, nil
}
