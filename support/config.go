package support

import (
	"errors"
	"io/fs"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
)

type Config struct {
	Address          string `env:"WEE_STORE_ADDRESS,default=:9080"`
	LogLevel         string `env:"WEE_STORE_LOG_LEVEL,default=info"`
	LogFormat        string `env:"WEE_STORE_LOG_FORMAT,default=json"`
	Tracing          string `env:"WEE_STORE_TRACING,default=none"`
	JaegerEndpoint   string `env:"WEE_STORE_JAEGER_ENDPOINT,default=http://localhost:14268/api/traces"`
	HoneycombTeam    string `env:"HONEYCOMB_TEAM"`
	HoneycombDataset string `env:"HONEYCOMB_DATASET"`
}

// LoadConfig reads the given dotenv files, skipping any that do not exist,
// then decodes the environment. Variables already set in the environment win
// over values from the files.
func LoadConfig(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, pkgerrors.Wrapf(err, "failed to load %s", file)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, pkgerrors.Wrap(err, "failed to decode environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	switch cfg.Tracing {
	case TracingNone, TracingConsole, TracingJaeger:
	case TracingHoneycomb:
		if cfg.HoneycombTeam == "" || cfg.HoneycombDataset == "" {
			return pkgerrors.New("honeycomb tracing requires HONEYCOMB_TEAM and HONEYCOMB_DATASET")
		}
	default:
		return &UnsupportedTracingError{Tracing: cfg.Tracing}
	}

	switch cfg.LogFormat {
	case LogFormatJSON, LogFormatConsole:
	default:
		return pkgerrors.Errorf("unsupported log format %s", cfg.LogFormat)
	}

	return nil
}
