// Package configs manages application configuration: server, database, blob
// storage, directory service, queue, cache and observability settings.
// Multiple formats are supported (YAML, JSON, TOML, dotenv) with optional hot
// reload.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion is stamped into client identifiers and trace resources.
const AppVersion = "1.0.0"

type (
	// AppConfig is the global application configuration.
	AppConfig struct {
		Server    ServerConfig         `mapstructure:"server"`
		DB        DBConfig             `mapstructure:"db"`
		Blob      BlobConfig           `mapstructure:"blob"`
		Directory DirectoryConfig      `mapstructure:"directory"`
		Log       LogConfig            `mapstructure:"log"`
		Metrics   MetricsConfig        `mapstructure:"metrics"`
		Tracing   TracingConfig        `mapstructure:"tracing"`
		MQ        MQConfig             `mapstructure:"mq"`
		KV        KVConfig             `mapstructure:"kv"`
		Events    EventsConfig         `mapstructure:"events"`
		RateLimit RateLimitConfig      `mapstructure:"rate_limit"`
		Breaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	}
)

var (
	globalConfig AppConfig
	appViper     *viper.Viper
)

// InitConfig loads the application configuration from a file or directory and
// enables hot reload when configured.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// A file: viper detects the type from the extension.
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("SOFTVAULT")

	if err := appViper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults registers default values for every configuration section.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig    ServerConfig
		dbConfig        DBConfig
		blobConfig      BlobConfig
		directoryConfig DirectoryConfig
		logConfig       LogConfig
		metricsConfig   MetricsConfig
		tracingConfig   TracingConfig
		mqConfig        MQConfig
		kvConfig        KVConfig
		eventsConfig    EventsConfig
		rateLimitConfig RateLimitConfig
		breakerConfig   CircuitBreakerConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	blobConfig.setDefaults(v)
	directoryConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig returns the global configuration instance.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
