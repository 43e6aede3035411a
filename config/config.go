package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wfunc/gridarena/game"
	"github.com/wfunc/gridarena/persistence"
)

// EnvPrefix is prepended to environment overrides, e.g. GRIDARENA_GAME_CAPACITY.
const EnvPrefix = "GRIDARENA"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
	GRPCAddress string `mapstructure:"grpc_address"`
}

type GameConfig struct {
	Capacity          int           `mapstructure:"capacity"`
	Rows              int           `mapstructure:"rows"`
	Cols              int           `mapstructure:"cols"`
	Obstacles         []game.Pos    `mapstructure:"obstacles"`
	Pickups           []game.Pos    `mapstructure:"pickups"`
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// Layout returns the arena terrain described by the game section.
func (g GameConfig) Layout() game.Layout {
	return game.Layout{
		Rows:      g.Rows,
		Cols:      g.Cols,
		Obstacles: g.Obstacles,
		Pickups:   g.Pickups,
	}
}

// DatabaseOptions maps the database section onto persistence options.
func (c *Config) DatabaseOptions() persistence.Options {
	pg := c.Database.Postgres
	return persistence.Options{
		Driver:   c.Database.Driver,
		Host:     pg.Host,
		Port:     pg.Port,
		User:     pg.User,
		Password: pg.Password,
		DBName:   pg.DBName,
	}
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host must not be empty")
	}
	if c.Game.BroadcastInterval < 0 {
		return fmt.Errorf("game.broadcast_interval must not be negative, got %s", c.Game.BroadcastInterval)
	}
	return c.Game.Layout().Validate(c.Game.Capacity)
}

func setDefaults(v *viper.Viper) {
	layout := game.DefaultLayout()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.http_address", "")
	v.SetDefault("server.rpc_address", "")
	v.SetDefault("server.grpc_address", "")

	v.SetDefault("game.capacity", 4)
	v.SetDefault("game.rows", layout.Rows)
	v.SetDefault("game.cols", layout.Cols)
	v.SetDefault("game.obstacles", posMaps(layout.Obstacles))
	v.SetDefault("game.pickups", posMaps(layout.Pickups))
	v.SetDefault("game.broadcast_interval", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("database.driver", "none")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "gridarena")
}

func posMaps(ps []game.Pos) []map[string]int {
	out := make([]map[string]int, len(ps))
	for i, p := range ps {
		out[i] = map[string]int{"x": p.X, "y": p.Y}
	}
	return out
}

// Flags registers the command line flags understood by LoadConfig.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", ".", "directory containing config.yaml")
	fs.String("log-level", "", "override log.level")
	fs.String("http", "", "override server.http_address (metrics, websocket)")
}

// LoadConfig reads config.yaml from path if it exists, then applies
// environment overrides and any flags set on fs. A missing file is not an
// error.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("log-level"); f != nil && f.Changed {
			v.Set("log.level", f.Value.String())
		}
		if f := fs.Lookup("http"); f != nil && f.Changed {
			v.Set("server.http_address", f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
