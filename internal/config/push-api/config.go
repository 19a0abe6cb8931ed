package push_api_config

import (
	"time"

	"github.com/levigram/pushgate/internal/obs"
	pginfra "github.com/levigram/pushgate/internal/repository/postgres"
	"github.com/levigram/pushgate/internal/transport/webpush"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type Dispatch struct {
	MaxInFlight int           `mapstructure:"max_in_flight"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App      App            `mapstructure:"app"`
	Server   Server         `mapstructure:"server"`
	DB       pginfra.Config `mapstructure:"db"`
	WebPush  webpush.Config `mapstructure:"webpush"`
	Dispatch Dispatch       `mapstructure:"dispatch"`
	OTEL     OTEL           `mapstructure:"otel"`
	Log      Log            `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

func (o *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		Endpoint:    o.OTLPEndpoint,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
	}
}
