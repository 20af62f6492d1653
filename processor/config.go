package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vineetp6/cleanlab-examples/reduce"
)

// Config holds all pipeline settings. Environment variables provide
// defaults; an optional YAML file named by PIPELINE_CONFIG overrides them.
type Config struct {
	Dataset     string `yaml:"dataset"`      // name used as the storage key
	DatasetPath string `yaml:"dataset_path"` // CoNLL input file
	OutputPath  string `yaml:"output_path"`  // zip artifact destination
	WorkDir     string `yaml:"work_dir"`     // per-fold train files and model dirs

	Folds     int    `yaml:"folds"`
	Seed      int64  `yaml:"seed"`
	ClassMap  []int  `yaml:"class_map"`
	Averaging string `yaml:"averaging"` // "uniform" or "length"

	TrainCommand  string `yaml:"train_command"`  // external fine-tuning command, optional
	PredictWorker string `yaml:"predict_worker"` // subprocess predictor command; empty = ONNX
	TokenizerPath string `yaml:"tokenizer_path"`
	OrtLibrary    string `yaml:"ort_library"`

	UseCassandra bool `yaml:"use_cassandra"`
	UseRedis     bool `yaml:"use_redis"`
}

// LoadConfig builds the pipeline configuration.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Dataset:       envOr("DATASET_NAME", "conll2003"),
		DatasetPath:   envOr("DATASET_PATH", "train.txt"),
		OutputPath:    envOr("OUTPUT_PATH", "pred_probs.zip"),
		WorkDir:       envOr("WORK_DIR", "work"),
		Folds:         5,
		Seed:          0,
		Averaging:     envOr("AVERAGING", "uniform"),
		TrainCommand:  os.Getenv("TRAIN_COMMAND"),
		PredictWorker: os.Getenv("PREDICT_WORKER"),
		TokenizerPath: envOr("TOKENIZER_PATH", "tokenizer.json"),
		OrtLibrary:    envOr("ORT_LIBRARY_PATH", "/usr/local/lib/libonnxruntime.so"),
		UseCassandra:  os.Getenv("CASSANDRA_HOSTS") != "",
		UseRedis:      os.Getenv("REDIS_HOST") != "",
	}

	if v := os.Getenv("FOLDS"); v != "" {
		folds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FOLDS %q: %w", v, err)
		}
		cfg.Folds = folds
	}

	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED %q: %w", v, err)
		}
		cfg.Seed = seed
	}

	// CoNLL-2003 IOB2 tags collapse to O/MISC/PER/ORG/LOC.
	cfg.ClassMap = []int{0, 1, 1, 2, 2, 3, 3, 4, 4}
	if v := os.Getenv("CLASS_MAP"); v != "" {
		classMap, err := parseClassMap(v)
		if err != nil {
			return nil, err
		}
		cfg.ClassMap = classMap
	}

	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Policy resolves the configured averaging policy.
func (c *Config) Policy() (reduce.Policy, error) {
	switch c.Averaging {
	case "uniform", "":
		return reduce.Uniform, nil
	case "length":
		return reduce.LengthWeighted, nil
	default:
		return 0, fmt.Errorf("unknown averaging policy %q (want uniform or length)", c.Averaging)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseClassMap(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid CLASS_MAP entry %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
