package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig  `mapstructure:"paths"`
	Train    TrainConfig  `mapstructure:"train"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type PathsConfig struct {
	ModelPath  string `mapstructure:"model_path"`
	CorpusPath string `mapstructure:"corpus_path"`
}

type TrainConfig struct {
	Algorithm        string `mapstructure:"algorithm"`
	VocabSize        int    `mapstructure:"vocab_size"`
	MinFrequency     int    `mapstructure:"min_frequency"`
	Lowercase        bool   `mapstructure:"lowercase"`
	SplitPunctuation bool   `mapstructure:"split_punctuation"`
	SplitPattern     string `mapstructure:"split_pattern"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	Workers         int    `mapstructure:"workers"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelPath:  "models/subtok.json",
			CorpusPath: "",
		},
		Train: TrainConfig{
			Algorithm:        AlgorithmBPE,
			VocabSize:        1000,
			MinFrequency:     2,
			Lowercase:        true,
			SplitPunctuation: true,
			SplitPattern:     "",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    65536,
			Workers:         4,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-model-path", defaults.Paths.ModelPath, "Path to the trained tokenizer model file")
	fs.String("paths-corpus-path", defaults.Paths.CorpusPath, "Path to the training corpus text file")
	fs.String("train-algorithm", defaults.Train.Algorithm, "Vocabulary learning algorithm (bpe|wordpiece)")
	fs.Int("train-vocab-size", defaults.Train.VocabSize, "Target vocabulary size")
	fs.Int("train-min-frequency", defaults.Train.MinFrequency, "Minimum pair frequency eligible for merging")
	fs.Bool("train-lowercase", defaults.Train.Lowercase, "Lowercase corpus text before training")
	fs.Bool("train-split-punctuation", defaults.Train.SplitPunctuation, "Split punctuation into standalone words")
	fs.String("train-split-pattern", defaults.Train.SplitPattern, "Optional pre-tokenizer regex (overrides whitespace splitting)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-workers", defaults.Server.Workers, "Maximum concurrent encode/decode requests (0 disables throttling)")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("SUBTOK")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("subtok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("paths.corpus_path", c.Paths.CorpusPath)
	v.SetDefault("train.algorithm", c.Train.Algorithm)
	v.SetDefault("train.vocab_size", c.Train.VocabSize)
	v.SetDefault("train.min_frequency", c.Train.MinFrequency)
	v.SetDefault("train.lowercase", c.Train.Lowercase)
	v.SetDefault("train.split_punctuation", c.Train.SplitPunctuation)
	v.SetDefault("train.split_pattern", c.Train.SplitPattern)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.model_path", "paths-model-path")
	v.RegisterAlias("paths.corpus_path", "paths-corpus-path")
	v.RegisterAlias("train.algorithm", "train-algorithm")
	v.RegisterAlias("train.vocab_size", "train-vocab-size")
	v.RegisterAlias("train.min_frequency", "train-min-frequency")
	v.RegisterAlias("train.lowercase", "train-lowercase")
	v.RegisterAlias("train.split_punctuation", "train-split-punctuation")
	v.RegisterAlias("train.split_pattern", "train-split-pattern")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("log_level", "log-level")
}
