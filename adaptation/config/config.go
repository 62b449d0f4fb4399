package config

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v2"

	commonlog "github.com/763021701/ttt-plus-plus/common/log"
)

// Defaults carries the run parameters substituted when a submission does
// not supply its own. The constants (dataset, level, learning rate, batch
// size, loader workers) are fixed across all runs.
type Defaults struct {
	Dataset      string  `yaml:"dataset"`
	Corruption   string  `yaml:"corruption"`
	Level        int     `yaml:"level"`
	Method       string  `yaml:"method"`
	NumSample    string  `yaml:"numSample"`
	LearningRate float64 `yaml:"learningRate"`
	BatchSize    int     `yaml:"batchSize"`
	Workers      int     `yaml:"workers"`
}

type Quota struct {
	CpuCount int64 `yaml:"cpuCount"`
	Memory   int64 `yaml:"memory"`  // Memory limit in GB
	Storage  int64 `yaml:"storage"` // Storage limit in GB
	GpuCount int64 `yaml:"gpuCount"`
}

type Images struct {
	ExecutionImageName string `yaml:"executionImageName"`
	BuildImage         bool   `yaml:"buildImage"`
	OverrideImage      bool   `yaml:"overrideImage"`
}

type Monitor struct {
	Enable bool `yaml:"enable"`
}

type Config struct {
	Database struct {
		Adaptation string `yaml:"adaptation"`
	} `yaml:"database"`
	Defaults Defaults `yaml:"defaults"`

	// Python interpreter and the directory holding the adaptation
	// scripts (bnm.py, tent.py).
	Python    string `yaml:"python"`
	ScriptDir string `yaml:"scriptDir"`

	// DataRoot defaults to the DATADIR environment variable and is
	// forwarded to the scripts unvalidated.
	DataRoot string `yaml:"dataRoot"`

	// RunDir is the base directory for per-run artifacts (progress.log,
	// output model, result snapshot).
	RunDir string `yaml:"runDir"`

	// ExecutorMode is "process" or "container".
	ExecutorMode string `yaml:"executorMode"`
	Images       Images `yaml:"images"`
	Quota        Quota  `yaml:"quota"`

	Logger  commonlog.LoggerConfig `yaml:"logger"`
	Monitor Monitor                `yaml:"monitor"`

	RunWorkerCount           int   `yaml:"runWorkerCount"`
	MaxExecutorRetriesPerRun uint  `yaml:"maxExecutorRetriesPerRun"`
	MaxRunQueueSize          uint  `yaml:"maxRunQueueSize"`
	PollIntervalSecs         int64 `yaml:"pollIntervalSecs"`
	RunTimeoutSecs           int64 `yaml:"runTimeoutSecs"`
}

var (
	instance *Config
	once     sync.Once
)

func loadConfig(config *Config) error {
	configPath := "/etc/config/config.yaml"
	if envPath := os.Getenv("CONFIG_FILE"); envPath != "" {
		configPath = envPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return yaml.UnmarshalStrict(data, config)
}

func GetConfig() *Config {
	once.Do(func() {
		instance = defaultConfig()

		if err := loadConfig(instance); err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
	})

	return instance
}

func defaultConfig() *Config {
	cfg := &Config{
		Database: struct {
			Adaptation string `yaml:"adaptation"`
		}{
			Adaptation: "root:123456@tcp(adaptation-db:3306)/adaptation?parseTime=true",
		},
		Defaults: Defaults{
			Dataset:      "cifar10",
			Corruption:   "snow",
			Level:        5,
			Method:       "bnm",
			NumSample:    "100000",
			LearningRate: 0.001,
			BatchSize:    128,
			Workers:      12,
		},
		Python:       "python",
		ScriptDir:    ".",
		DataRoot:     os.Getenv("DATADIR"),
		RunDir:       os.TempDir(),
		ExecutorMode: "process",
		Images: Images{
			ExecutionImageName: "adaptation-pytorch:v1",
			BuildImage:         false,
			OverrideImage:      false,
		},
		Quota: Quota{
			CpuCount: 12,
			Memory:   32,
			Storage:  64,
			GpuCount: 1,
		},
		Logger: commonlog.LoggerConfig{
			Format: "text",
			Level:  "info",
			Path:   "",
		},
		RunWorkerCount:           1,
		MaxExecutorRetriesPerRun: 1,
		MaxRunQueueSize:          5,
		PollIntervalSecs:         60,
		RunTimeoutSecs:           6 * 60 * 60,
	}
	return cfg
}
