package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// ErrNotFound is returned when no config file exists in any searched location
var ErrNotFound = errors.New("config file not found")

const configFileName = "deskrota_config.yaml"

// ConstructConfig configures the constructive builder
type ConstructConfig struct {
	TopK int `yaml:"topK" validate:"min=1"`
}

// HillClimbConfig configures local search
type HillClimbConfig struct {
	Iterations int  `yaml:"iterations" validate:"min=0"`
	Strict     bool `yaml:"strict"`
}

// AnnealConfig configures simulated annealing
type AnnealConfig struct {
	InitialTemp  float64         `yaml:"initialTemp" validate:"gt=0,gtfield=FinalTemp"`
	FinalTemp    float64         `yaml:"finalTemp" validate:"gt=0"`
	Alpha        float64         `yaml:"alpha" validate:"gt=0,lt=1"`
	ItersPerTemp int             `yaml:"itersPerTemp" validate:"min=1"`
	Weights      scoring.Weights `yaml:"weights"`
}

// ILSConfig configures iterated local search
type ILSConfig struct {
	MaxIters int  `yaml:"maxIters" validate:"min=0"`
	LSIters  int  `yaml:"lsIters" validate:"min=0"`
	PerturbK int  `yaml:"perturbK" validate:"min=0"`
	Strict   bool `yaml:"strict"`
}

// GeneticConfig configures the genetic algorithm
type GeneticConfig struct {
	Generations    int     `yaml:"generations" validate:"min=0"`
	PopulationSize int     `yaml:"populationSize" validate:"min=1"`
	CrossoverRate  float64 `yaml:"crossoverRate" validate:"gte=0,lte=1"`
	MutationRate   float64 `yaml:"mutationRate" validate:"gte=0,lte=1"`
	TournamentSize int     `yaml:"tournamentSize" validate:"min=1"`
}

// ExperimentsConfig configures the multi-seed experiment harness
type ExperimentsConfig struct {
	// Instances is a glob of instance JSON files
	Instances string   `yaml:"instances" validate:"required"`
	Methods   []string `yaml:"methods" validate:"min=1,dive,oneof=hc sa ils ga local no_local"`
	Seeds     []int64  `yaml:"seeds" validate:"min=1"`
	Workers   int      `yaml:"workers" validate:"min=1"`

	// OutputDir receives per-run solutions and summaries
	OutputDir string `yaml:"outputDir" validate:"required"`
}

// StoreConfig selects where run results are stored
type StoreConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=csv postgres"`
	CSVPath     string `yaml:"csvPath" validate:"required_if=Backend csv"`
	DatabaseURL string `yaml:"databaseURL" validate:"required_if=Backend postgres"`
}

// MetricsConfig configures the Prometheus textfile output
type MetricsConfig struct {
	// Textfile is written after solve and experiment runs when set
	Textfile string `yaml:"textfile,omitempty"`
}

// HorizonConfig describes generated planning horizons
type HorizonConfig struct {
	RRule string `yaml:"rrule,omitempty"`

	// Start is the first day (YYYY-MM-DD) when the rule has no DTSTART
	Start string `yaml:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Config represents the application configuration
type Config struct {
	Construct   ConstructConfig   `yaml:"construct"`
	HillClimb   HillClimbConfig   `yaml:"hillClimb"`
	Anneal      AnnealConfig      `yaml:"anneal"`
	ILS         ILSConfig         `yaml:"ils"`
	Genetic     GeneticConfig     `yaml:"genetic"`
	Experiments ExperimentsConfig `yaml:"experiments"`
	Store       StoreConfig       `yaml:"store"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Horizon     HorizonConfig     `yaml:"horizon"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the parameters of the benchmark experiments
func Default() *Config {
	return &Config{
		Construct: ConstructConfig{TopK: 3},
		HillClimb: HillClimbConfig{Iterations: 1000},
		Anneal: AnnealConfig{
			InitialTemp:  200,
			FinalTemp:    1,
			Alpha:        0.95,
			ItersPerTemp: 1000,
			Weights:      scoring.DefaultWeights,
		},
		ILS: ILSConfig{MaxIters: 20, LSIters: 500, PerturbK: 3},
		Genetic: GeneticConfig{
			Generations:    30,
			PopulationSize: 20,
			CrossoverRate:  0.7,
			MutationRate:   0.2,
			TournamentSize: 3,
		},
		Experiments: ExperimentsConfig{
			Instances: "instances/*.json",
			Methods:   []string{"sa", "ils"},
			Seeds:     []int64{1, 2, 3, 4, 5},
			Workers:   4,
			OutputDir: "results",
		},
		Store: StoreConfig{
			Backend: "csv",
			CSVPath: "results/experiments.csv",
		},
	}
}

// Load loads and validates the configuration from deskrota_config.yaml.
// It looks for the config file in the current directory first, then in the user's home directory.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv is like Load but prefers deskrota_config.<env>.yaml when env is set
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, err
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Values missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct, the annealing weights and the horizon rrule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Anneal.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid anneal weights: %w", err)
	}

	if cfg.Horizon.RRule != "" {
		if _, err := rrule.StrToROption(cfg.Horizon.RRule); err != nil {
			return fmt.Errorf("invalid rrule in horizon: %w", err)
		}
	}

	return nil
}

// findConfigFile searches the current directory, then the home directory, for
// deskrota_config.<env>.yaml and then deskrota_config.yaml
func findConfigFile(env string) (string, error) {
	names := []string{configFileName}
	if env != "" {
		names = []string{fmt.Sprintf("deskrota_config.%s.yaml", env), configFileName}
	}

	dirs := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, homeDir)
	}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%w in current directory or home directory", ErrNotFound)
}
