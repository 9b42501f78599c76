package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DefaultModel = "gpt-4o"

	// GeminiBaseURL is Gemini's OpenAI-compatible endpoint, used when the key
	// comes from GEMINI_API_KEY and no base_url is configured.
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	GeminiModel   = "gemini-2.0-flash"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	History       HistoryConfig       `mapstructure:"history"`
	Optimization  OptimizationConfig  `mapstructure:"optimization"`
	Justification JustificationConfig `mapstructure:"justification"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Publish       PublishConfig       `mapstructure:"publish"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Host         string   `mapstructure:"host"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HistoryConfig struct {
	Path           string `mapstructure:"path"`
	Driver         string `mapstructure:"driver"`
	ReloadSchedule string `mapstructure:"reload_schedule"`
	PreferRequest  bool   `mapstructure:"prefer_request"`
}

type OptimizationConfig struct {
	DemoSavingsKWh float64 `mapstructure:"demo_savings_kwh"`
}

type LanguageStrings struct {
	Action  string `mapstructure:"action"`
	None    string `mapstructure:"none"`
	Success string `mapstructure:"success"`
}

type JustificationConfig struct {
	Mode      string                     `mapstructure:"mode"`
	APIKey    string                     `mapstructure:"api_key"`
	Model     string                     `mapstructure:"model"`
	BaseURL   string                     `mapstructure:"base_url"`
	Timeout   int                        `mapstructure:"timeout"`
	Languages map[string]LanguageStrings `mapstructure:"languages"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Discovery   bool   `mapstructure:"discovery"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type PublishConfig struct {
	TimeoutMs int `mapstructure:"timeout_ms"`
}

// Load reads the YAML config at path, or searches for config.yaml in the
// working directory and ./config when path is empty.
func Load(path string, logger *logrus.Logger) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("history.path", "simulated_energy_data.csv")
	v.SetDefault("history.driver", "csv")
	v.SetDefault("history.reload_schedule", "")
	v.SetDefault("history.prefer_request", false)
	v.SetDefault("optimization.demo_savings_kwh", 20.0)
	v.SetDefault("justification.mode", "template")
	v.SetDefault("justification.api_key", "")
	v.SetDefault("justification.model", DefaultModel)
	v.SetDefault("justification.base_url", "")
	v.SetDefault("justification.timeout", 15)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.client_id", "energy-agent")
	v.SetDefault("mqtt.topic_prefix", "energy-agent")
	v.SetDefault("mqtt.discovery", true)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "energy.recommendations")
	v.SetDefault("publish.timeout_ms", 2000)

	v.SetEnvPrefix("ENERGY_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Info("Config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Justification.APIKey == "" {
		config.Justification.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.Justification.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			config.Justification.APIKey = key
			useGemini(&config.Justification, logger)
		}
	}
	if config.MQTT.Broker == "" {
		config.MQTT.Broker = os.Getenv("MQTT_BROKER")
	}
	if config.MQTT.Username == "" {
		config.MQTT.Username = os.Getenv("MQTT_USERNAME")
	}
	if config.MQTT.Password == "" {
		config.MQTT.Password = os.Getenv("MQTT_PASSWORD")
	}

	return &config, nil
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// useGemini points a GEMINI_API_KEY credential at Gemini unless base_url
// already names an endpoint.
func useGemini(j *JustificationConfig, logger *logrus.Logger) {
	if j.BaseURL != "" {
		return
	}
	j.BaseURL = GeminiBaseURL
	if j.Model == "" || j.Model == DefaultModel {
		j.Model = GeminiModel
	}
	logger.Infof("Using GEMINI_API_KEY with %s (model %s)", j.BaseURL, j.Model)
}
