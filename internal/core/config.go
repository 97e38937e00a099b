package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀, 如 KJOBCRAWL_FETCH_RETRIES
const EnvPrefix = "KJOBCRAWL"

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig `mapstructure:"crawl"`
	Fetch   models.FetchConfig `mapstructure:"fetch"`
	Logging LoggingConfig      `mapstructure:"logging"`
	Output  OutputConfig       `mapstructure:"output"`
	Store   StoreConfig        `mapstructure:"store"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir     string `mapstructure:"base_dir"`
	HeadersFile string `mapstructure:"headers_file"`
}

// StoreConfig 存储配置, Path 为空表示不持久化
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoadConfig 加载配置文件
// configPath 为空时依次搜索 ./configs, . 和 ~/.kjobcrawl 下的 config.yaml,找不到时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".kjobcrawl"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if config.Crawl.Mode == "" {
		config.Crawl.Mode = models.FetchAuto
	}

	return &config, nil
}

// setDefaults 设置默认配置值
// AutomaticEnv 只对已知键生效,所以每个键都要有默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_jobs", 10)
	v.SetDefault("crawl.max_pages", 5)
	v.SetDefault("crawl.parallelism", 1)
	v.SetDefault("crawl.budget", time.Duration(0))
	v.SetDefault("crawl.batch_delay", 2*time.Second)
	v.SetDefault("crawl.mode", string(models.FetchAuto))
	v.SetDefault("crawl.continue_on_error", true)

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.wait_timeout", 20*time.Second)
	v.SetDefault("fetch.settle", 2*time.Second)
	v.SetDefault("fetch.headless", true)
	v.SetDefault("fetch.browser_bin", "")
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.backoff", 5*time.Second)
	v.SetDefault("fetch.min_delay", 1*time.Second)
	v.SetDefault("fetch.max_delay", 2*time.Second)
	v.SetDefault("fetch.rate_per_sec", 1.0)
	v.SetDefault("fetch.memory_reserve_mb", 512)
	v.SetDefault("fetch.insecure_tls", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.headers_file", "configs/headers.yaml")

	v.SetDefault("store.path", "")
}

// Validate 检查爬取和获取配置
func (c *Config) Validate() error {
	if err := c.Crawl.Validate(); err != nil {
		return fmt.Errorf("crawl配置无效: %w", err)
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch配置无效: %w", err)
	}
	return nil
}

// LogConfig 转换为日志初始化参数
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// CLIOverrides 命令行参数,零值表示未指定
type CLIOverrides struct {
	MaxJobs     int
	Parallelism int
	Budget      time.Duration
	Retries     int
	Wait        time.Duration
	Mode        string
	StorePath   string
	OutputDir   string
	// Headless 只有显式传入 --headless 时才覆盖
	Headless *bool
}

// MergeCLIFlags 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.MaxJobs > 0 {
		c.Crawl.MaxJobs = o.MaxJobs
	}
	if o.Parallelism > 0 {
		c.Crawl.Parallelism = o.Parallelism
	}
	if o.Budget > 0 {
		c.Crawl.Budget = o.Budget
	}
	if o.Mode != "" {
		c.Crawl.Mode = models.FetchMode(o.Mode)
	}
	if o.Retries > 0 {
		c.Fetch.Retries = o.Retries
	}
	if o.Wait > 0 {
		c.Fetch.WaitTimeout = o.Wait
	}
	if o.Headless != nil {
		c.Fetch.Headless = *o.Headless
	}
	if o.StorePath != "" {
		c.Store.Path = o.StorePath
	}
	if o.OutputDir != "" {
		c.Output.BaseDir = o.OutputDir
	}
}
