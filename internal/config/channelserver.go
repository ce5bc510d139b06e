package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv overrides the channel server config path.
const ConfigPathEnv = "MABIGO_CHANNEL_CONFIG"

// DefaultChannelServerPath is used when ConfigPathEnv is unset.
const DefaultChannelServerPath = "config/channelserver.yaml"

// RegionEntry is a region created at startup.
type RegionEntry struct {
	ID   int32      `yaml:"id"`
	Name string     `yaml:"name"`
	NPCs []NPCEntry `yaml:"npcs"`
}

// NPCEntry is an NPC spawned into its region at startup.
// An empty Dialog makes the NPC impossible to talk to.
type NPCEntry struct {
	EntityID int64  `yaml:"entity_id"`
	Name     string `yaml:"name"`
	Race     int32  `yaml:"race"`
	Dialog   string `yaml:"dialog"`
}

// ChannelServer holds all configuration for the channel server.
type ChannelServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Logging: debug, info, warn or error
	LogLevel string `yaml:"log_level"`

	// Skill rank catalog (YAML)
	SkillDataPath string `yaml:"skill_data_path"`

	// Regions loaded into the world, with their NPCs
	Regions []RegionEntry `yaml:"regions"`

	// Write queue / timeouts
	WriteTimeout  time.Duration `yaml:"write_timeout"`   // per-write deadline (default: 5s)
	ReadTimeout   time.Duration `yaml:"read_timeout"`    // idle client disconnect (default: 120s)
	SendQueueSize int           `yaml:"send_queue_size"` // per-client outbox capacity (default: 256)
	SaveTimeout   time.Duration `yaml:"save_timeout"`    // account save on disconnect (default: 3s)

	// Periodic save of logged in accounts, 0 disables it
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
}

// DefaultChannelServer returns ChannelServer config with sensible defaults.
func DefaultChannelServer() ChannelServer {
	return ChannelServer{
		BindAddress:   "0.0.0.0",
		Port:          11020,
		Database:      DefaultDatabase(),
		LogLevel:      "info",
		SkillDataPath: "data/skills.yaml",
		Regions: []RegionEntry{
			{ID: 1, Name: "Tir Chonaill", NPCs: []NPCEntry{
				{EntityID: 0x10F00000000001, Name: "Duncan", Race: 10001, Dialog: "duncan"},
				{EntityID: 0x10F00000000002, Name: "Dilys", Race: 10002, Dialog: "dilys"},
			}},
			{ID: 14, Name: "Dunbarton", NPCs: []NPCEntry{
				{EntityID: 0x10F00000000101, Name: "Manus", Race: 10001, Dialog: "manus"},
			}},
		},
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   120 * time.Second,
		SendQueueSize: 256,
		SaveTimeout:   3 * time.Second,

		AutosaveInterval: 5 * time.Minute,
	}
}

// ChannelServerPath returns the config path from ConfigPathEnv, or the default.
func ChannelServerPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	return DefaultChannelServerPath
}

// LoadChannelServer loads channel server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadChannelServer(path string) (ChannelServer, error) {
	cfg := DefaultChannelServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel returns the configured log level, info if unset.
func (c ChannelServer) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
