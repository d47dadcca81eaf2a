package config

import (
	"fmt"
	"time"

	"github.com/kickoff/matchcore/internal/ballphysics"
	"github.com/kickoff/matchcore/internal/match"
	"github.com/kickoff/matchcore/internal/rules"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "matchcore.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds in-memory SQLite backend settings.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// WebSocketConfig holds live streaming backend settings.
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"` // memory, sqlite, postgres or websocket
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds InfluxDB telemetry settings.
type InfluxConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// APIConfig holds the backend sync endpoint.
type APIConfig struct {
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// LeagueConfig configures season generation. A zero Seed draws a random one.
type LeagueConfig struct {
	Name    string      `json:"name" mapstructure:"name"`
	Season  int         `json:"season" mapstructure:"season"`
	Seed    uint64      `json:"seed" mapstructure:"seed"`
	Shuffle bool        `json:"shuffle" mapstructure:"shuffle"`
	Teams   []core.Team `json:"teams" mapstructure:"teams"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./matchlogs")

	phys := ballphysics.DefaultConfig()
	viper.SetDefault("physics.gravity", phys.Gravity)
	viper.SetDefault("physics.airResistance", phys.AirResistance)
	viper.SetDefault("physics.groundFriction", phys.GroundFriction)
	viper.SetDefault("physics.spinDecay", phys.SpinDecay)
	viper.SetDefault("physics.magnusStrength", phys.MagnusStrength)
	viper.SetDefault("physics.magnusWindow", phys.MagnusWindow)
	viper.SetDefault("physics.curveMultiplier", phys.CurveMultiplier)
	viper.SetDefault("physics.impulseScale", phys.ImpulseScale)
	viper.SetDefault("physics.groundRestitution", phys.GroundRestitution)
	viper.SetDefault("physics.postRestitution", phys.PostRestitution)
	viper.SetDefault("physics.postSpinKick", phys.PostSpinKick)
	viper.SetDefault("physics.headHeight", phys.HeadHeight)
	viper.SetDefault("physics.chestHeight", phys.ChestHeight)
	viper.SetDefault("physics.headerImpulse", phys.HeaderImpulse)
	viper.SetDefault("physics.chestDamping", phys.ChestDamping)
	viper.SetDefault("physics.skillFactor", phys.SkillFactor)
	viper.SetDefault("physics.knucklePulses", phys.KnucklePulses)
	viper.SetDefault("physics.knuckleInterval", phys.KnuckleInterval)
	viper.SetDefault("physics.knuckleSpread", phys.KnuckleSpread[:])
	viper.SetDefault("physics.surfaceFriction", phys.SurfaceFriction)

	traj := trajectory.DefaultConfig()
	viper.SetDefault("trajectory.timeStep", traj.TimeStep)
	viper.SetDefault("trajectory.maxTime", traj.MaxTime)

	rc := rules.DefaultConfig()
	viper.SetDefault("rules.halfWidth", rc.HalfWidth)
	viper.SetDefault("rules.halfLength", rc.HalfLength)
	viper.SetDefault("rules.goalAreaHalfWidth", rc.GoalAreaHalfWidth)
	viper.SetDefault("rules.goalKickLine", rc.GoalKickLine)
	viper.SetDefault("rules.foulDistance", rc.FoulDistance)
	viper.SetDefault("rules.aggressionSpeed", rc.AggressionSpeed)
	viper.SetDefault("rules.passivitySpeed", rc.PassivitySpeed)
	viper.SetDefault("rules.foulDelay", rc.FoulDelay.String())
	viper.SetDefault("rules.offsideDelay", rc.OffsideDelay.String())
	viper.SetDefault("rules.restartDelay", rc.RestartDelay.String())

	mc := match.DefaultConfig()
	viper.SetDefault("match.halfDuration", mc.HalfDuration.String())
	viper.SetDefault("match.sampleEvery", mc.SampleEvery)
	viper.SetDefault("match.goalWidth", mc.GoalWidth)
	viper.SetDefault("match.crossbarHeight", mc.CrossbarHeight)
	viper.SetDefault("match.goalDepth", mc.GoalDepth)
	viper.SetDefault("match.settleSpeed", mc.SettleSpeed)
	viper.SetDefault("match.surface", mc.Surface)

	viper.SetDefault("league.name", "Kickoff League")
	viper.SetDefault("league.season", 1)
	viper.SetDefault("league.seed", 0)
	viper.SetDefault("league.shuffle", true)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./seasons")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./matchcore.db")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/v1/stream")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "matchcore")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "matchcore")
	viper.SetDefault("influx.backupDir", "./influx-backup")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "matchcore")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// unmarshal decodes a config section over the supplied defaults.
func unmarshal[T any](key string, def T) (T, error) {
	if err := viper.UnmarshalKey(key, &def); err != nil {
		return def, fmt.Errorf("decode %s config: %w", key, err)
	}
	return def, nil
}

// GetPhysicsConfig returns the validated ball physics tunables.
func GetPhysicsConfig() (ballphysics.Config, error) {
	cfg, err := unmarshal("physics", ballphysics.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// GetTrajectoryConfig returns the forecast sampling settings.
func GetTrajectoryConfig() (trajectory.Config, error) {
	return unmarshal("trajectory", trajectory.DefaultConfig())
}

// GetRulesConfig returns the validated rule engine settings.
func GetRulesConfig() (rules.Config, error) {
	cfg, err := unmarshal("rules", rules.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// GetMatchConfig returns the match session settings.
func GetMatchConfig() (match.Config, error) {
	cfg, err := unmarshal("match", match.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// GetLeagueConfig returns the season generation settings.
func GetLeagueConfig() LeagueConfig {
	cfg, _ := unmarshal("league", LeagueConfig{})
	return cfg
}

// GetStorageConfig returns storage backend configuration from viper
func GetStorageConfig() StorageConfig {
	cfg, _ := unmarshal("storage", StorageConfig{})
	return cfg
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	cfg, _ := unmarshal("db", DBConfig{})
	return cfg
}

// GetInfluxConfig returns the InfluxDB telemetry settings.
func GetInfluxConfig() InfluxConfig {
	cfg, _ := unmarshal("influx", InfluxConfig{})
	return cfg
}

// GetAPIConfig returns the backend sync settings.
func GetAPIConfig() APIConfig {
	cfg, _ := unmarshal("api", APIConfig{})
	return cfg
}

// GetOTelConfig returns OpenTelemetry configuration from viper
func GetOTelConfig() OTelConfig {
	cfg, _ := unmarshal("otel", OTelConfig{})
	return cfg
}
