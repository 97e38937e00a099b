package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 全局参数
var (
	configFile     string
	verbose        bool
	logLevel       string
	headers        []string
	validateConfig bool
)

// appConfig 由 PersistentPreRunE 加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "kjobcrawl",
	Short: "韩国招聘网站爬取工具",
	Long: `kjobcrawl - 韩国招聘网站爬取工具

支持的站点: 사람인(saramin), 잡플래닛(jobplanet), 인크루트(incruit), 원티드(wanted), LinkedIn

示例:
  # 爬取列表页中的前10条招聘
  kjobcrawl crawl -u "https://www.saramin.co.kr/zf_user/search/recruit?searchword=golang"

  # 批量爬取并保存到SQLite
  kjobcrawl crawl -f urls.txt --db jobs.db --budget 10m

  # 抓取单条招聘详情
  kjobcrawl job https://www.wanted.co.kr/wd/123456

  # 识别URL所属站点
  kjobcrawl detect https://kr.linkedin.com/jobs/view/1

  # 验证HTTP头部配置
  kjobcrawl --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}

		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := config.LogConfig()
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = zerolog.DebugLevel.String()
		}
		if _, err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		if verbose {
			utils.Infof("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfig {
			return runValidateConfig(cmd)
		}
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kjobcrawl %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "构建时间: %s\n", BuildTime)
	},
}

// loadDotEnv .env 不存在时忽略
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("加载 %s 失败: %w", path, err)
	}
	return nil
}

// runValidateConfig 校验配置文件与HTTP头部,输出脱敏后的有效头部
func runValidateConfig(cmd *cobra.Command) error {
	utils.Infof("验证配置...")
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	hm, err := core.NewHeaderManager(appConfig.Output.HeadersFile, headers, utils.Logger)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	if err := hm.LoadConfig(); err != nil {
		return fmt.Errorf("加载头部配置失败: %w", err)
	}
	if err := hm.Validate(); err != nil {
		return fmt.Errorf("头部配置验证失败: %w", err)
	}

	safe := hm.GetSafeHeaders()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "配置验证通过")
	fmt.Fprintf(out, "当前有效的HTTP头部 (%d个):\n", len(safe))
	for _, line := range sortedPairs(safe) {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintf(out, "User-Agent: %s\n", hm.UserAgent())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", nil, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	rootCmd.AddCommand(versionCmd, crawlCmd, jobCmd, listCmd, detectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		stop()
		os.Exit(1)
	}
}
