/*
 * @module service/config/app_config
 * @description 应用配置加载，默认值 + 配置文件 + 环境变量
 * @architecture 配置层 - viper 统一管理
 * @stateFlow SetDefault -> ReadInConfig(RAOTM_CONFIG) -> AutomaticEnv(RAOTM_*) -> Unmarshal -> validate
 * @rules
 *   - 未配置数据源DSN时刷新功能禁用，缓存仍可使用
 *   - 未配置管理员密码时使用默认密码
 *   - 兼容 LISTEN_PORT、BASE_CONTEXT、DB_CONN、ADMIN_PASSWORD 环境变量
 * @dependencies github.com/spf13/viper
 * @refs service/init.go, main.go
 */

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "RAOTM"

// DefaultAdminPassword 默认管理员密码
const DefaultAdminPassword = "hfd2025"

// 存储驱动
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// 事件发布驱动
const (
	EventDriverNone  = "none"
	EventDriverKafka = "kafka"
	EventDriverMQTT  = "mqtt"
)

// Config 应用配置
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DataDir string        `mapstructure:"data_dir"`
	Log     LogConfig     `mapstructure:"log"`
	Source  SourceConfig  `mapstructure:"source"`
	Store   StoreConfig   `mapstructure:"store"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Lock    LockConfig    `mapstructure:"lock"`
	Event   EventConfig   `mapstructure:"event"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	BaseContext string `mapstructure:"base_context"`
	// TrustProxy 部署在反向代理之后时，按 X-Real-IP / X-Forwarded-For 识别客户端
	TrustProxy bool `mapstructure:"trust_proxy"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SourceConfig 访谈数据库配置
type SourceConfig struct {
	DSN          string        `mapstructure:"dsn"`
	QueryDir     string        `mapstructure:"query_dir"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	ConnTimeout  time.Duration `mapstructure:"conn_timeout"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// StoreConfig 人工评分存储配置
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	File   string `mapstructure:"file"`
}

// AdminConfig 管理员配置
type AdminConfig struct {
	Password      string        `mapstructure:"password"`
	PasswordHash  string        `mapstructure:"password_hash"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	LoginRate     float64       `mapstructure:"login_rate"`
	LoginBurst    int           `mapstructure:"login_burst"`
}

// RedisConfig Redis配置，Addr为空时使用进程内实现
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled 是否启用Redis
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LockConfig 刷新锁配置
type LockConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
}

// EventConfig 事件发布配置
type EventConfig struct {
	Driver string `mapstructure:"driver"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RefreshEnabled 是否配置了数据源
func (c *Config) RefreshEnabled() bool {
	return c.Source.DSN != ""
}

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 80)
	v.SetDefault("server.base_context", "")
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("data_dir", "data")
	v.SetDefault("log.level", "info")

	v.SetDefault("source.dsn", "")
	v.SetDefault("source.query_dir", "")
	v.SetDefault("source.max_open_conns", 5)
	v.SetDefault("source.conn_timeout", 10*time.Second)
	v.SetDefault("source.query_timeout", 2*time.Minute)

	v.SetDefault("store.driver", StoreDriverFile)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.file", "")

	v.SetDefault("admin.password", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.session_ttl", 8*time.Hour)
	v.SetDefault("admin.sweep_schedule", "0 */5 * * * *")
	v.SetDefault("admin.login_rate", 0.5)
	v.SetDefault("admin.login_burst", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("lock.ttl", 5*time.Minute)
	v.SetDefault("lock.retry_interval", 200*time.Millisecond)
	v.SetDefault("lock.wait_timeout", 5*time.Second)

	v.SetDefault("event.driver", EventDriverNone)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ra-leaderboard-events")
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "ra-leaderboard-service")
	v.SetDefault("mqtt.topic", "ra-leaderboard/events")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
}

// Load 加载配置，configFile为空时读取 RAOTM_CONFIG
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容旧环境变量
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "LISTEN_PORT")
	_ = v.BindEnv("server.base_context", EnvPrefix+"_SERVER_BASE_CONTEXT", "BASE_CONTEXT")
	_ = v.BindEnv("source.dsn", EnvPrefix+"_SOURCE_DSN", "DB_CONN")
	_ = v.BindEnv("admin.password", EnvPrefix+"_ADMIN_PASSWORD", "ADMIN_PASSWORD")

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return &cfg, nil
}

// normalize 补全派生值并校验
func (c *Config) normalize() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		c.Admin.Password = DefaultAdminPassword
	}
	if c.Store.File == "" {
		c.Store.File = filepath.Join(c.DataDir, "manual_scores.json")
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Event.Driver = strings.ToLower(strings.TrimSpace(c.Event.Driver))

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("端口无效: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverFile:
	case StoreDriverPostgres, StoreDriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("存储驱动 %s 需要配置 store.dsn", c.Store.Driver)
		}
	default:
		return fmt.Errorf("不支持的存储驱动: %s", c.Store.Driver)
	}

	switch c.Event.Driver {
	case EventDriverNone, "":
		c.Event.Driver = EventDriverNone
	case EventDriverKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("Kafka事件发布需要配置 kafka.brokers")
		}
	case EventDriverMQTT:
		if c.MQTT.Broker == "" {
			return fmt.Errorf("MQTT事件发布需要配置 mqtt.broker")
		}
	default:
		return fmt.Errorf("不支持的事件驱动: %s", c.Event.Driver)
	}

	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("会话有效期必须大于0")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT QoS 必须在0到2之间")
	}
	return nil
}
