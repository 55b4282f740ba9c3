package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"liquid_handler/internal/driver"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete daemon configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Network  NetworkConfig  `mapstructure:"network"`
	Hardware HardwareConfig `mapstructure:"hardware"`
	Poller   PollerConfig   `mapstructure:"poller"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// JournalConfig points at the sqlite event journal. ":memory:" keeps
// nothing across restarts.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

type NetworkConfig struct {
	Interface  string        `mapstructure:"interface"`
	Attempts   int           `mapstructure:"attempts"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type HardwareConfig struct {
	Backend     string        `mapstructure:"backend"` // sim | rpio
	StandbyPin  uint8         `mapstructure:"standby_pin"`
	Peristaltic ChannelConfig `mapstructure:"peristaltic"`
	Vacuum      ChannelConfig `mapstructure:"vacuum"`
}

type ChannelConfig struct {
	PWMPin         uint8         `mapstructure:"pwm_pin"`
	IN1Pin         uint8         `mapstructure:"in1_pin"`
	IN2Pin         uint8         `mapstructure:"in2_pin"`
	FrequencyHz    int           `mapstructure:"frequency_hz"`
	ResolutionBits uint          `mapstructure:"resolution_bits"`
	BrakeHold      time.Duration `mapstructure:"brake_hold"`
}

// BridgeConfig maps the pin layout onto the driver. Channel A is the
// peristaltic pump, channel B the vacuum pump.
func (h HardwareConfig) BridgeConfig() driver.BridgeConfig {
	return driver.BridgeConfig{
		Standby: driver.Pin(h.StandbyPin),
		A:       h.Peristaltic.channel("peristaltic"),
		B:       h.Vacuum.channel("vacuum"),
	}
}

func (c ChannelConfig) channel(name string) driver.ChannelConfig {
	return driver.ChannelConfig{
		Name:           name,
		PWM:            driver.Pin(c.PWMPin),
		IN1:            driver.Pin(c.IN1Pin),
		IN2:            driver.Pin(c.IN2Pin),
		FrequencyHz:    c.FrequencyHz,
		ResolutionBits: c.ResolutionBits,
		BrakeHold:      c.BrakeHold,
	}
}

type PollerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

const envPrefix = "PUMP"

// New returns a viper instance with every default set and environment
// overrides enabled (PUMP_SERVER_PORT, PUMP_HARDWARE_BACKEND, ...).
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("journal.path", ":memory:")

	v.SetDefault("network.interface", "")
	v.SetDefault("network.attempts", 20)
	v.SetDefault("network.retry_delay", 500*time.Millisecond)

	v.SetDefault("hardware.backend", "sim")
	v.SetDefault("hardware.standby_pin", 10)
	v.SetDefault("hardware.peristaltic.pwm_pin", 13)
	v.SetDefault("hardware.peristaltic.in1_pin", 11)
	v.SetDefault("hardware.peristaltic.in2_pin", 12)
	v.SetDefault("hardware.peristaltic.frequency_hz", 20000)
	v.SetDefault("hardware.peristaltic.resolution_bits", 10)
	v.SetDefault("hardware.vacuum.pwm_pin", 18)
	v.SetDefault("hardware.vacuum.in1_pin", 15)
	v.SetDefault("hardware.vacuum.in2_pin", 16)
	v.SetDefault("hardware.vacuum.frequency_hz", 20000)
	v.SetDefault("hardware.vacuum.resolution_bits", 10)
	v.SetDefault("hardware.vacuum.brake_hold", 50*time.Millisecond)

	v.SetDefault("poller.interval", 10*time.Millisecond)
}

// Load reads .env (if present), then the config file, into a Config.
// An empty file looks for configs/config.yml; a missing default file is not
// an error, a missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var errInvalidConfig = errors.New("invalid config")

// validate rejects durations the poller ticker and the retry loop cannot use.
func (c *Config) validate() error {
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("%w: poller.interval must be positive, got %v", errInvalidConfig, c.Poller.Interval)
	}
	if c.Network.RetryDelay <= 0 {
		return fmt.Errorf("%w: network.retry_delay must be positive, got %v", errInvalidConfig, c.Network.RetryDelay)
	}
	return nil
}
