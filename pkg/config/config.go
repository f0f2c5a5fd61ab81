package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"eightball/variance/internal/business/variance"
)

// EnvPrefix 环境变量前缀，如 VARIANCE_DATABASE_DSN 覆盖 database.dsn
const EnvPrefix = "VARIANCE"

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Workers  []WorkerConfig `mapstructure:"workers"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Server   ServerConfig   `mapstructure:"server"`

	// Detection 覆盖引擎的兜底检测配置，未配置时为 nil
	Detection *variance.DetectionConfig `mapstructure:"-"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // mysql | sqlite
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name          string           `mapstructure:"name"`
	QueueName     string           `mapstructure:"queue_name"`
	CallbackQueue string           `mapstructure:"callback_queue"` // 回调队列名称
	Subscriber    SubscriberConfig `mapstructure:"subscriber"`
	Processor     ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// EngineConfig 检测引擎运行参数
type EngineConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	UnitTimeout   time.Duration `mapstructure:"unit_timeout"`
	NotifyChannel string        `mapstructure:"notify_channel"` // 完成通知频道前缀
	Matcher       string        `mapstructure:"matcher"`        // substring | sku
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("engine.batch_size", variance.DefaultBatchSize)
	v.SetDefault("engine.unit_timeout", variance.DefaultUnitTimeout)
	v.SetDefault("engine.notify_channel", "variance:complete")
	v.SetDefault("engine.matcher", "substring")
	v.SetDefault("server.port", 8080)
}

// Load 加载配置文件，环境变量优先
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	// detection 在默认值基础上覆盖，允许只写部分字段
	if v.IsSet("detection") {
		detection := variance.DefaultConfig()
		if err := v.UnmarshalKey("detection", &detection); err != nil {
			return nil, fmt.Errorf("unmarshal detection config failed: %w", err)
		}
		cfg.Detection = &detection
	}

	return &cfg, nil
}

// Validate 验证公共配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Engine.BatchSize <= 0 {
		return fmt.Errorf("engine.batch_size must be positive")
	}
	if c.Engine.UnitTimeout <= 0 {
		return fmt.Errorf("engine.unit_timeout must be positive")
	}
	if c.Detection != nil {
		if err := c.Detection.Validate(); err != nil {
			return fmt.Errorf("detection: %w", err)
		}
	}
	return nil
}

// ValidateWorker 验证 Worker 进程额外需要的配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	for _, w := range c.Workers {
		if w.QueueName == "" {
			return fmt.Errorf("worker %q: queue_name is required", w.Name)
		}
		if w.Subscriber.Threads <= 0 || w.Processor.Threads <= 0 {
			return fmt.Errorf("worker %q: subscriber and processor threads must be positive", w.Name)
		}
		if w.Processor.Timeout <= 0 {
			return fmt.Errorf("worker %q: processor timeout must be positive", w.Name)
		}
		if w.Processor.BufferSize < 0 {
			return fmt.Errorf("worker %q: processor buffer_size must not be negative", w.Name)
		}
	}
	return nil
}
