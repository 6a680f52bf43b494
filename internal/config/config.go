// Package config assembles the service configuration from defaults, an
// optional JSON file, environment variables and command-line flags, in that
// order of increasing priority, and validates the result.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultUsersSourceURL is the placeholder API the user list is fetched from.
const DefaultUsersSourceURL = "https://jsonplaceholder.typicode.com/users"

type Config struct {
	RunAddr          string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel         string        `env:"LOG_LEVEL" validate:"loglevel"`
	UsersSourceURL   string        `env:"USERS_SOURCE_URL" validate:"url"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" validate:"gte=0"`
	CarouselInterval time.Duration `env:"CAROUSEL_INTERVAL" validate:"gt=0"`
	CarouselFade     time.Duration `env:"CAROUSEL_FADE" validate:"gte=0,ltfield=CarouselInterval"`
	ConfigFile       string        `env:"CONFIG"`
}

type jsonConfig struct {
	RunAddr          *string `json:"server_address"`
	LogLevel         *string `json:"log_level"`
	UsersSourceURL   *string `json:"users_source_url"`
	FetchTimeout     *string `json:"fetch_timeout"`
	CarouselInterval *string `json:"carousel_interval"`
	CarouselFade     *string `json:"carousel_fade"`
}

// field names a Config field independently of the source that sets it.
type field string

const (
	fieldRunAddr          field = "RunAddr"
	fieldLogLevel         field = "LogLevel"
	fieldUsersSourceURL   field = "UsersSourceURL"
	fieldFetchTimeout     field = "FetchTimeout"
	fieldCarouselInterval field = "CarouselInterval"
	fieldCarouselFade     field = "CarouselFade"
	fieldConfigFile       field = "ConfigFile"
)

// layer is the part of the configuration one source actually provided.
// Zero values in values are meaningful as long as the field is in set.
type layer struct {
	values Config
	set    map[field]bool
}

var envFields = map[string]field{
	"SERVER_ADDRESS":    fieldRunAddr,
	"LOG_LEVEL":         fieldLogLevel,
	"USERS_SOURCE_URL":  fieldUsersSourceURL,
	"FETCH_TIMEOUT":     fieldFetchTimeout,
	"CAROUSEL_INTERVAL": fieldCarouselInterval,
	"CAROUSEL_FADE":     fieldCarouselFade,
	"CONFIG":            fieldConfigFile,
}

var flagFields = map[string]field{
	"a": fieldRunAddr,
	"l": fieldLogLevel,
	"u": fieldUsersSourceURL,
	"t": fieldFetchTimeout,
	"i": fieldCarouselInterval,
	"f": fieldCarouselFade,
	"c": fieldConfigFile,
}

var defaultConfig = Config{
	RunAddr:          ":8080",
	LogLevel:         "info",
	UsersSourceURL:   DefaultUsersSourceURL,
	FetchTimeout:     0,
	CarouselInterval: 3 * time.Second,
	CarouselFade:     300 * time.Millisecond,
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line flags entirely.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses the given arguments instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return validate.Struct(c)
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func overrideWith(values *Config, other layer) {
	if other.set[fieldRunAddr] {
		values.RunAddr = other.values.RunAddr
	}
	if other.set[fieldLogLevel] {
		values.LogLevel = other.values.LogLevel
	}
	if other.set[fieldUsersSourceURL] {
		values.UsersSourceURL = other.values.UsersSourceURL
	}
	if other.set[fieldFetchTimeout] {
		values.FetchTimeout = other.values.FetchTimeout
	}
	if other.set[fieldCarouselInterval] {
		values.CarouselInterval = other.values.CarouselInterval
	}
	if other.set[fieldCarouselFade] {
		values.CarouselFade = other.values.CarouselFade
	}
	if other.set[fieldConfigFile] {
		values.ConfigFile = other.values.ConfigFile
	}
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config file field %q: %w", name, err)
	}

	return d, nil
}

func loadJSON(fileName string) (layer, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return layer{}, fmt.Errorf("reading config file: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return layer{}, fmt.Errorf("parsing config file: %w", err)
	}

	result := layer{set: map[field]bool{}}
	if raw.RunAddr != nil {
		result.values.RunAddr = *raw.RunAddr
		result.set[fieldRunAddr] = true
	}
	if raw.LogLevel != nil {
		result.values.LogLevel = *raw.LogLevel
		result.set[fieldLogLevel] = true
	}
	if raw.UsersSourceURL != nil {
		result.values.UsersSourceURL = *raw.UsersSourceURL
		result.set[fieldUsersSourceURL] = true
	}

	durations := []struct {
		name  string
		raw   *string
		field field
		dest  *time.Duration
	}{
		{"fetch_timeout", raw.FetchTimeout, fieldFetchTimeout, &result.values.FetchTimeout},
		{"carousel_interval", raw.CarouselInterval, fieldCarouselInterval, &result.values.CarouselInterval},
		{"carousel_fade", raw.CarouselFade, fieldCarouselFade, &result.values.CarouselFade},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		if *d.dest, err = parseDuration(d.name, *d.raw); err != nil {
			return layer{}, err
		}
		result.set[d.field] = true
	}

	return result, nil
}

func parseEnv() (layer, error) {
	result := layer{set: map[field]bool{}}
	if err := env.Parse(&result.values); err != nil {
		return layer{}, err
	}
	for name, f := range envFields {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			result.set[f] = true
		}
	}

	return result, nil
}

func parseFlags(args []string) (layer, error) {
	result := layer{set: map[field]bool{}}
	fromFlags := &result.values

	flagSet := flag.NewFlagSet("useradmin", flag.ContinueOnError)
	flagSet.StringVar(&fromFlags.RunAddr, "a", "", "address and port to run server")
	flagSet.StringVar(&fromFlags.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&fromFlags.UsersSourceURL, "u", "", "URL of the remote users collection")
	flagSet.DurationVar(&fromFlags.FetchTimeout, "t", 0, "timeout of the users fetch, 0 disables it")
	flagSet.DurationVar(&fromFlags.CarouselInterval, "i", 0, "carousel auto-advance interval")
	flagSet.DurationVar(&fromFlags.CarouselFade, "f", 0, "carousel fade duration, 0 switches slides immediately")
	flagSet.StringVar(&fromFlags.ConfigFile, "c", "", "path to a JSON config file")

	if err := flagSet.Parse(args); err != nil {
		return layer{}, err
	}
	flagSet.Visit(func(f *flag.Flag) {
		result.set[flagFields[f.Name]] = true
	})

	return result, nil
}

// New builds and validates the configuration.
// Priority: flags > environment > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                nil,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}
	if options.args == nil && len(os.Args) > 1 {
		options.args = os.Args[1:]
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var fromFlags layer
	if !options.disableFlagsParsing {
		var err error
		if fromFlags, err = parseFlags(options.args); err != nil {
			return nil, err
		}
	}

	fromEnv, err := parseEnv()
	if err != nil {
		return nil, err
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := fromEnv.values.ConfigFile
	if fromFlags.set[fieldConfigFile] {
		configFile = fromFlags.values.ConfigFile
	}
	if configFile != "" {
		fromJSON, err := loadJSON(configFile)
		if err != nil {
			return nil, err
		}
		overrideWith(values, fromJSON)
	}

	overrideWith(values, fromEnv)
	overrideWith(values, fromFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
