package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Keeper    KeeperConfig    `mapstructure:"keeper"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type KeeperConfig struct {
	// AccountsFile may also be set through the MEGAKEEP_ACCOUNTS_FILE
	// environment variable.
	AccountsFile     string        `mapstructure:"accounts_file"`
	Provider         string        `mapstructure:"provider"`
	MarkerRemotePath string        `mapstructure:"marker_remote_path"`
	Schedule         string        `mapstructure:"schedule"`
	LoginAttempts    int           `mapstructure:"login_attempts"`
	UploadAttempts   int           `mapstructure:"upload_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
}

type ProvidersConfig struct {
	S3     S3Provider     `mapstructure:"s3"`
	GDrive GDriveProvider `mapstructure:"gdrive"`
}

type S3Provider struct {
	Region  string  `mapstructure:"region"`
	Bucket  string  `mapstructure:"bucket"`
	Prefix  string  `mapstructure:"prefix"`
	QuotaGB float64 `mapstructure:"quota_gb"`
}

type GDriveProvider struct {
	FolderID         string `mapstructure:"folder_id"`
	ClientSecretFile string `mapstructure:"client_secret_file"`
	AuthAddr         string `mapstructure:"auth_addr"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "megakeep")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("keeper.accounts_file", "./.accounts")
	v.SetDefault("keeper.provider", "mega")
	v.SetDefault("keeper.marker_remote_path", "/Root/.megakeep.txt")
	v.SetDefault("keeper.login_attempts", 2)
	v.SetDefault("keeper.upload_attempts", 3)
	v.SetDefault("keeper.retry_delay", "5s")
	v.SetDefault("providers.gdrive.auth_addr", ":8089")

	if err := v.BindEnv("keeper.accounts_file", "MEGAKEEP_ACCOUNTS_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	// The config file is optional; defaults plus environment cover a plain
	// megatools setup.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Keeper.AccountsFile == "" {
		return fmt.Errorf("keeper.accounts_file is required")
	}
	if c.Keeper.MarkerRemotePath == "" {
		return fmt.Errorf("keeper.marker_remote_path is required")
	}
	if c.Keeper.LoginAttempts < 1 {
		return fmt.Errorf("keeper.login_attempts must be at least 1")
	}
	if c.Keeper.UploadAttempts < 1 {
		return fmt.Errorf("keeper.upload_attempts must be at least 1")
	}
	if c.Keeper.RetryDelay < 0 {
		return fmt.Errorf("keeper.retry_delay must not be negative")
	}

	switch c.Keeper.Provider {
	case "mega":
	case "s3":
		if c.Providers.S3.Bucket == "" {
			return fmt.Errorf("providers.s3.bucket is required for the s3 provider")
		}
		if c.Providers.S3.Region == "" {
			return fmt.Errorf("providers.s3.region is required for the s3 provider")
		}
	case "gdrive":
		if c.Providers.GDrive.FolderID == "" {
			return fmt.Errorf("providers.gdrive.folder_id is required for the gdrive provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Keeper.Provider)
	}

	return nil
}

// MarkerName is the marker's bare file name, used by providers that address
// objects by name rather than by path.
func (c *Config) MarkerName() string {
	return path.Base(c.Keeper.MarkerRemotePath)
}
