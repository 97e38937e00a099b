package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "检查运行环境 (浏览器、内存、配置、数据库)",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "==============================================")
		fmt.Fprintln(out, "  kjobcrawl 环境检查")
		fmt.Fprintln(out, "==============================================")

		allOK := true
		check := func(ok bool, format string, a ...any) {
			mark := "[OK]  "
			if !ok {
				mark = "[FAIL]"
				allOK = false
			}
			fmt.Fprintf(out, "%s %s\n", mark, fmt.Sprintf(format, a...))
		}

		fmt.Fprintf(out, "[OK]   Go版本: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

		checkBrowser(out, appConfig.Fetch.BrowserBin, check)

		guard := crawlers.NewResourceGuard(appConfig.Fetch.MemoryReserveMB, 0, utils.Logger)
		if avail, ok, err := guard.Check(); err != nil {
			fmt.Fprintf(out, "[WARN] 无法读取内存信息: %v\n", err)
		} else {
			check(ok, "可用内存: %s (保留 %dMB)", avail, appConfig.Fetch.MemoryReserveMB)
		}

		check(appConfig.Validate() == nil, "配置文件: crawl/fetch 参数有效")

		hm, err := core.NewHeaderManager(appConfig.Output.HeadersFile, headers, utils.Logger)
		if err == nil {
			err = hm.LoadConfig()
		}
		if err == nil {
			err = hm.Validate()
		}
		check(err == nil, "HTTP头部配置: %s%s", appConfig.Output.HeadersFile, errSuffix(err))

		check(os.MkdirAll(appConfig.Output.BaseDir, 0755) == nil, "输出目录: %s", appConfig.Output.BaseDir)

		if appConfig.Store.Path != "" {
			db, err := store.Open(cmd.Context(), appConfig.Store.Path)
			if err == nil {
				_, err = db.Count(cmd.Context())
				_ = db.Close()
			}
			check(err == nil, "数据库: %s%s", appConfig.Store.Path, errSuffix(err))
		} else {
			fmt.Fprintln(out, "[SKIP] 数据库: 未配置 store.path")
		}

		fmt.Fprintln(out, "==============================================")
		if !allOK {
			return errors.New("环境检查未通过")
		}
		fmt.Fprintln(out, "环境检查通过")
		return nil
	},
}

// checkBrowser 找不到浏览器时 rod 会在首次启动时自动下载,只给出警告
func checkBrowser(out io.Writer, bin string, check func(bool, string, ...any)) {
	if bin != "" {
		_, err := os.Stat(bin)
		check(err == nil, "浏览器: %s%s", bin, errSuffix(err))
		return
	}
	if path, ok := launcher.LookPath(); ok {
		check(true, "浏览器: %s", path)
		return
	}
	fmt.Fprintln(out, "[WARN] 未找到本地Chromium,首次动态爬取时将自动下载")
}

func errSuffix(err error) string {
	if err == nil {
		return ""
	}
	return " (" + err.Error() + ")"
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
