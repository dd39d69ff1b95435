package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/netviva/fleetrec/pkg/constants"
)

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files, and the optional config file, in that order
// of precedence.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Reconciliation configuration
	Workbook  string
	Store     string
	Schedule  string
	Retention int

	// CountNoServiceAsPending keeps never-serviced units in rate
	// denominators as pending activations.
	CountNoServiceAsPending bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from every source below flag level.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLEETREC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".fleetrec")
		}
	}
	_ = viper.ReadInConfig()

	viper.SetDefault("retention", constants.DefaultRetention)
	viper.SetDefault("count_no_service_as_pending", true)

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		Workbook:                viper.GetString("workbook"),
		Store:                   viper.GetString("store"),
		Schedule:                viper.GetString("schedule"),
		Retention:               viper.GetInt("retention"),
		CountNoServiceAsPending: viper.GetBool("count_no_service_as_pending"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// UpdateFromFlags applies parsed command flags, which take precedence
// over every other configuration source.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	} else if verbose {
		c.LogLevel = "debug"
	} else if quiet {
		c.LogLevel = "warn"
	}
}

// loadEnvFiles loads .env files from the working directory. Missing
// files are fine; real deployments configure through the environment.
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
