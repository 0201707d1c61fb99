package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files, and the optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Input locations
	EpicDir       string
	SecutrialFile string
	IDLogFile     string
	FieldSpecFile string
	RenameFile    string

	// Input parsing
	Delimiter string
	Latin1    bool

	// Engine tuning
	Workers int
	TopN    int

	// Output
	OutDir string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration in order of precedence: flags (applied by
// cobra later), environment variables, .env files, config file, defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
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
			viper.SetConfigName(".regrecon")
		}
	}
	_ = viper.ReadInConfig()

	return &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		EpicDir:       viper.GetString("epic_dir"),
		SecutrialFile: viper.GetString("secutrial_file"),
		IDLogFile:     viper.GetString("idlog_file"),
		FieldSpecFile: viper.GetString("fieldspec_file"),
		RenameFile:    viper.GetString("rename_file"),

		Delimiter: viper.GetString("delimiter"),
		Latin1:    viper.GetBool("latin1"),

		Workers: viper.GetInt("workers"),
		TopN:    viper.GetInt("top_n"),

		OutDir: viper.GetString("out_dir"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// loadEnvFiles loads .env files; .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
