package post_notifier_config

import (
	"time"

	"github.com/levigram/pushgate/internal/obs"
	kafkax "github.com/levigram/pushgate/internal/repository/kafka"
	pginfra "github.com/levigram/pushgate/internal/repository/postgres"
	"github.com/levigram/pushgate/internal/transport/webpush"
)

type KafkaIn struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

func (k *KafkaIn) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers: k.Brokers,
		Topic:   k.Topic,
		GroupID: k.GroupID,
	}
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
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
	DB       pginfra.Config `mapstructure:"db"`
	In       KafkaIn        `mapstructure:"kafka_in"`
	WebPush  webpush.Config `mapstructure:"webpush"`
	Dispatch Dispatch       `mapstructure:"dispatch"`
	Server   Server         `mapstructure:"server"`
	OTEL     OTEL           `mapstructure:"otel"`
	Log      Log            `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    "pushgate/post-notifier",
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
