package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// Exchange Type
	ExchangeTypeTopic = "topic"

	// Routing Keys
	RoutingDownloadCompleted = "download.completed"
)

// Config is the struct that holds the configuration of the application
type Config struct {
	App      AppConfig      `json:"app"`
	Backend  BackendConfig  `json:"backend"`
	RabbitMq RabbitMQConfig `json:"rabbitmq"`
	Browser  BrowserConfig  `json:"browser"`
	WebPanel WebPanelConfig `json:"webpanel"`
}

type AppConfig struct {
	Name     string `json:"name"`
	LogLevel int    `json:"logLevel"`
	Env      string `json:"env"`
}

// BackendConfig points at the external download API.
// A zero RequestTimeout means the info lookup never times out.
type BackendConfig struct {
	BaseURL        string        `json:"baseUrl"`
	RequestTimeout time.Duration `json:"requestTimeout"`
}

// RabbitMQConfig is optional, an empty URL disables the event bus
type RabbitMQConfig struct {
	URL              string     `json:"url"`
	Exchange         string     `json:"exchange"`
	Queue            QueueNames `json:"queue"`
	ReconnectRetries int        `json:"reconnectRetries"`
	ReconnectTimeout int        `json:"reconnectTimeout"`
}

type QueueNames struct {
	Events string `json:"events"`
}

// BrowserConfig drives the headless launcher used by the CLI
type BrowserConfig struct {
	DownloadDir string        `json:"downloadDir"`
	UserAgent   string        `json:"userAgent"`
	Headless    bool          `json:"headless"`
	Timeout     time.Duration `json:"timeout"`
}

type WebPanelConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Load config from config.json in the current directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads config.json and an optional .env file from dir
func LoadFrom(dir string) (*Config, error) {
	// Variables already set in the environment win over .env
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config") // File name without extension
	v.SetConfigType("json")   // Set to JSON format
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read configuration file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal JSON to Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override from environment variables if available
	if envURL := os.Getenv("BACKEND_BASE_URL"); envURL != "" {
		config.Backend.BaseURL = envURL
	}
	if envURL := os.Getenv("RABBITMQ_URL"); envURL != "" {
		config.RabbitMq.URL = envURL
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		port, err := strconv.Atoi(envPort)
		if err != nil {
			return nil, fmt.Errorf("invalid WEB_PORT %q: %w", envPort, err)
		}
		config.WebPanel.Port = port
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vidloader")
	v.SetDefault("app.logLevel", 4)
	v.SetDefault("app.env", "development")

	v.SetDefault("backend.baseUrl", "http://localhost:5000/")
	v.SetDefault("backend.requestTimeout", 0)

	v.SetDefault("rabbitmq.exchange", "vidloader")
	v.SetDefault("rabbitmq.queue.events", "vidloader_events")
	v.SetDefault("rabbitmq.reconnectRetries", 3)
	v.SetDefault("rabbitmq.reconnectTimeout", 1000)

	v.SetDefault("browser.downloadDir", "downloads")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", "10m")

	v.SetDefault("webpanel.host", "0.0.0.0")
	v.SetDefault("webpanel.port", 8080)
}

// Get config for app
func (c *Config) GetAppConfig() *AppConfig {
	return &c.App
}

// Get config for the backend API
func (c *Config) GetBackendConfig() *BackendConfig {
	return &c.Backend
}

// Get config for the headless browser
func (c *Config) GetBrowserConfig() *BrowserConfig {
	return &c.Browser
}

// Get config for web panel
func (c *Config) GetWebPanelConfig() *WebPanelConfig {
	return &c.WebPanel
}

// Get config for RabbitMQ
func (c *Config) GetRabbitMQConfig() *RabbitMQConfig {
	return &c.RabbitMq
}
