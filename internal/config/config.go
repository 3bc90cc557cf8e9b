package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment   string        `mapstructure:"environment"`
	GCP           GCP           `mapstructure:"gcp"`
	Models        Models        `mapstructure:"models"`
	YouTube       YouTube       `mapstructure:"youtube"`
	Auth          Auth          `mapstructure:"auth"`
	VideoAnalysis VideoAnalysis `mapstructure:"video_analysis"`
	Server        Server        `mapstructure:"server"`
	Logging       Logging       `mapstructure:"logging"`
}

// GCP holds Google Cloud project and storage configuration
type GCP struct {
	ProjectID       string `mapstructure:"project_id"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	SignerEmail     string `mapstructure:"signer_email"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Models holds the model identifiers for each generation task
type Models struct {
	Chat   string `mapstructure:"chat"`
	Lite   string `mapstructure:"lite"`
	Worker string `mapstructure:"worker"`
	Image  string `mapstructure:"image"`
	Video  string `mapstructure:"video"`
}

// YouTube holds the YouTube Data API configuration
type YouTube struct {
	APIKey string `mapstructure:"api_key"`
}

// Auth holds static basic-auth credentials for the API surface
type Auth struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// VideoAnalysis holds the clip window used when analyzing review videos
type VideoAnalysis struct {
	StartOffset time.Duration `mapstructure:"start_offset"`
	EndOffset   time.Duration `mapstructure:"end_offset"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".shoplens")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// IsDevelopment reports whether the service runs in development mode,
// where all AI collaborators are replaced by in-process mocks.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "production")

	// GCP defaults
	viper.SetDefault("gcp.region", "us-central1")

	// Model defaults
	viper.SetDefault("models.chat", "gemini-2.5-flash")
	viper.SetDefault("models.lite", "gemini-2.5-flash-lite")
	viper.SetDefault("models.worker", "gemini-2.0-flash")
	viper.SetDefault("models.image", "imagen-4.0-fast-generate-001")
	viper.SetDefault("models.video", "veo-3.0-fast-generate-001")

	// Video analysis clip window defaults
	viper.SetDefault("video_analysis.start_offset", "0s")
	viper.SetDefault("video_analysis.end_offset", "0s")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "10m")
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("environment", []string{
		"ENVIRONMENT",
		"APP_ENV",
	})

	bindEnvKeys("gcp.project_id", []string{
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
	})

	bindEnvKeys("gcp.region", []string{
		"GCP_REGION",
		"GOOGLE_CLOUD_REGION",
	})

	bindEnvKeys("gcp.bucket", []string{
		"GCS_BUCKET_NAME",
	})

	bindEnvKeys("gcp.signer_email", []string{
		"GCP_IAM_SERVICE_ACCOUNT_EMAIL",
	})

	bindEnvKeys("gcp.credentials_file", []string{
		"GOOGLE_APPLICATION_CREDENTIALS",
	})

	bindEnvKeys("youtube.api_key", []string{
		"YOUTUBE_API_KEY",
	})

	bindEnvKeys("auth.username", []string{
		"BASIC_AUTH_USERNAME",
	})

	bindEnvKeys("auth.password", []string{
		"BASIC_AUTH_PASSWORD",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	// Development mode runs entirely on mocks and needs no cloud access.
	if !strings.EqualFold(config.Environment, "development") {
		if config.GCP.ProjectID == "" {
			errors = append(errors, "GCP project is required. Set GCP_PROJECT_ID environment variable or gcp.project_id in config file")
		}
		if config.GCP.Bucket == "" {
			errors = append(errors, "GCS bucket is required. Set GCS_BUCKET_NAME environment variable or gcp.bucket in config file")
		}
		if config.GCP.CredentialsFile == "" && config.GCP.SignerEmail == "" {
			errors = append(errors, "URL signing requires either GOOGLE_APPLICATION_CREDENTIALS (key file) or GCP_IAM_SERVICE_ACCOUNT_EMAIL (impersonated signing)")
		}
	}

	if config.VideoAnalysis.EndOffset < 0 || config.VideoAnalysis.StartOffset < 0 {
		errors = append(errors, "video_analysis offsets must not be negative")
	}
	if config.VideoAnalysis.EndOffset > 0 && config.VideoAnalysis.EndOffset <= config.VideoAnalysis.StartOffset {
		errors = append(errors, "video_analysis.end_offset must be greater than video_analysis.start_offset")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
