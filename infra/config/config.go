package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"shelf/infra/logging"
)

// Config is the whole process configuration. Every section has usable
// defaults, so an empty file (or none) gives a working local server.
type Config struct {
	Server  ServerConfig   `yaml:"server" ini:"server"`
	Library LibraryConfig  `yaml:"library" ini:"library"`
	WAL     WALConfig      `yaml:"wal" ini:"wal"`
	Outbox  OutboxConfig   `yaml:"outbox" ini:"outbox"`
	Broker  BrokerConfig   `yaml:"broker" ini:"broker"`
	Log     logging.Config `yaml:"log" ini:"log"`
}

type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr" ini:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr" ini:"http_addr"`
}

type LibraryConfig struct {
	// BasePath is the tab-separated base library used when no snapshot exists.
	BasePath         string        `yaml:"base_path" ini:"base_path"`
	SnapshotDir      string        `yaml:"snapshot_dir" ini:"snapshot_dir"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval" ini:"snapshot_interval"`
}

type WALConfig struct {
	Dir             string        `yaml:"dir" ini:"dir"`
	SegmentSize     int64         `yaml:"segment_size" ini:"segment_size"`
	SegmentDuration time.Duration `yaml:"segment_duration" ini:"segment_duration"`
	SyncEveryAppend bool          `yaml:"sync_every_append" ini:"sync_every_append"`
}

type OutboxConfig struct {
	Dir string `yaml:"dir" ini:"dir"`
}

// BrokerConfig selects the Kafka client. An empty Client disables
// publishing; events still accumulate in the outbox.
type BrokerConfig struct {
	Client     string        `yaml:"client" ini:"client"` // "", sarama, kafka-go
	Brokers    []string      `yaml:"brokers" ini:"brokers" delim:","`
	Topic      string        `yaml:"topic" ini:"topic"`
	Interval   time.Duration `yaml:"interval" ini:"interval"`
	MaxRetries uint32        `yaml:"max_retries" ini:"max_retries"`
}

const (
	BrokerNone    = ""
	BrokerSarama  = "sarama"
	BrokerKafkaGo = "kafka-go"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr: ":50051",
			HTTPAddr: ":8080",
		},
		Library: LibraryConfig{
			BasePath:         "data/base_library.tsv",
			SnapshotDir:      "data/snapshot",
			SnapshotInterval: 30 * time.Second,
		},
		WAL: WALConfig{
			Dir:             "data/wal",
			SegmentSize:     2 * 1024 * 1024,
			SegmentDuration: time.Minute,
		},
		Outbox: OutboxConfig{Dir: "data/outbox"},
		Broker: BrokerConfig{
			Topic:      "shelf.catalog",
			Interval:   250 * time.Millisecond,
			MaxRetries: 5,
		},
		Log: logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .ini. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	case ".ini":
		f, err := ini.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		if err := f.MapTo(cfg); err != nil {
			return nil, errors.Wrapf(err, "map %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Broker.Client {
	case BrokerNone:
	case BrokerSarama, BrokerKafkaGo:
		if len(c.Broker.Brokers) == 0 {
			return errors.Errorf("broker client %q needs at least one broker", c.Broker.Client)
		}
		if c.Broker.Topic == "" {
			return errors.New("broker topic is empty")
		}
	default:
		return errors.Errorf("unknown broker client %q", c.Broker.Client)
	}
	if c.WAL.Dir == "" || c.Outbox.Dir == "" {
		return errors.New("wal and outbox dirs are required")
	}
	if c.WAL.Dir == c.Outbox.Dir {
		return errors.New("wal and outbox must not share a directory")
	}
	return nil
}
