// Package cfg loads pipeline configuration from a YAML file and the
// environment. Defaults reproduce the reference training setup: holdout
// 0.2, seed 42, iteration budget 2000.
package cfg

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	DBPath         string
	EmployeesTable string
	ArtifactPath   string
	RunHistoryPath string
	Holdout        float64
	Seed           int64
	LearningRate   float64
	MaxIter        int
	Tolerance      float64
	SampleSize     int
}

type ConfigFile struct {
	Store struct {
		DBPath         string `yaml:"dbPath"`
		EmployeesTable string `yaml:"employeesTable"`
	} `yaml:"store"`

	Training struct {
		Holdout      float64 `yaml:"holdout"`
		Seed         int64   `yaml:"seed"`
		LearningRate float64 `yaml:"learningRate"`
		MaxIter      int     `yaml:"maxIter"`
		Tolerance    float64 `yaml:"tolerance"`
	} `yaml:"training"`

	Artifacts struct {
		ModelPath      string `yaml:"modelPath"`
		RunHistoryPath string `yaml:"runHistoryPath"`
	} `yaml:"artifacts"`

	Output struct {
		SampleSize int `yaml:"sampleSize"`
	} `yaml:"output"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		DBPath:         getEnvOrDefault("HR_DB_PATH", stringOrDefault(config.Store.DBPath, "database/hr.db")),
		EmployeesTable: getEnvOrDefault("EMPLOYEES_TABLE", stringOrDefault(config.Store.EmployeesTable, "employees")),
		ArtifactPath:   getEnvOrDefault("ARTIFACT_PATH", stringOrDefault(config.Artifacts.ModelPath, "models/attrition_model.json")),
		RunHistoryPath: getEnvOrDefault("RUN_HISTORY_PATH", stringOrDefault(config.Artifacts.RunHistoryPath, "models/runs.db")),
		Holdout:        getFloatFromEnvOrConfig("HOLDOUT_FRACTION", config.Training.Holdout, 0.2),
		Seed:           getInt64FromEnvOrConfig("SPLIT_SEED", config.Training.Seed, 42),
		LearningRate:   getFloatFromEnvOrConfig("LEARNING_RATE", config.Training.LearningRate, 0.1),
		MaxIter:        getIntFromEnvOrConfig("MAX_ITER", config.Training.MaxIter, 2000),
		Tolerance:      getFloatFromEnvOrConfig("TOLERANCE", config.Training.Tolerance, 1e-6),
		SampleSize:     getIntFromEnvOrConfig("SAMPLE_SIZE", config.Output.SampleSize, 10),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DBPath:         getEnvOrDefault("HR_DB_PATH", "database/hr.db"),
		EmployeesTable: getEnvOrDefault("EMPLOYEES_TABLE", "employees"),
		ArtifactPath:   getEnvOrDefault("ARTIFACT_PATH", "models/attrition_model.json"),
		RunHistoryPath: getEnvOrDefault("RUN_HISTORY_PATH", "models/runs.db"),
		Holdout:        getFloatOrDefault("HOLDOUT_FRACTION", 0.2),
		Seed:           getInt64OrDefault("SPLIT_SEED", 42),
		LearningRate:   getFloatOrDefault("LEARNING_RATE", 0.1),
		MaxIter:        getIntOrDefault("MAX_ITER", 2000),
		Tolerance:      getFloatOrDefault("TOLERANCE", 1e-6),
		SampleSize:     getIntOrDefault("SAMPLE_SIZE", 10),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func stringOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.DBPath == "" {
		return fmt.Errorf("record store path cannot be empty")
	}
	if settings.EmployeesTable == "" {
		return fmt.Errorf("employees table name cannot be empty")
	}
	if settings.ArtifactPath == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}
	if settings.RunHistoryPath == "" {
		return fmt.Errorf("run history path cannot be empty")
	}

	if settings.Holdout <= 0 || settings.Holdout >= 1 {
		return fmt.Errorf("holdout fraction must be between 0 and 1 exclusive, got %f", settings.Holdout)
	}
	if settings.LearningRate <= 0 || settings.LearningRate > 10 {
		return fmt.Errorf("learning rate must be between 0 and 10, got %f", settings.LearningRate)
	}
	if settings.MaxIter < 1 || settings.MaxIter > 1000000 {
		return fmt.Errorf("iteration budget must be between 1 and 1000000, got %d", settings.MaxIter)
	}
	if settings.Tolerance <= 0 || settings.Tolerance > 0.1 {
		return fmt.Errorf("tolerance must be between 0 and 0.1, got %g", settings.Tolerance)
	}
	if settings.SampleSize < 1 || settings.SampleSize > 1000 {
		return fmt.Errorf("sample size must be between 1 and 1000, got %d", settings.SampleSize)
	}

	return nil
}
