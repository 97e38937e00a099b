package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/service"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/RecoveryAshes/kjobcrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	platform  string
	listSite  string
	listLimit int
)

var jobCmd = &cobra.Command{
	Use:   "job <url>",
	Short: "抓取单条招聘详情并输出JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if storePath != "" {
			appConfig.MergeCLIFlags(core.CLIOverrides{StorePath: storePath})
		}
		a, err := newApp(cmd.Context(), appConfig, headers, utils.Logger)
		if err != nil {
			return err
		}
		defer a.Close()

		resp := a.service().Crawl(cmd.Context(), service.CrawlRequest{URL: args[0], Platform: platform})
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化结果失败: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		if !resp.Success {
			return errors.New(resp.Message)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "列出已保存的招聘",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := storePath
		if path == "" {
			path = appConfig.Store.Path
		}
		if path == "" {
			return errors.New("未指定数据库路径 (--db 或 store.path)")
		}

		var site models.SiteID
		if listSite != "" {
			s, ok := models.ParseSiteID(listSite)
			if !ok {
				return fmt.Errorf("未知站点: %s", listSite)
			}
			site = s
		}

		db, err := store.Open(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.List(cmd.Context(), site, listLimit)
		if err != nil {
			return err
		}
		total, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSITE\tCOMPANY\tTITLE\tDEADLINE\tURL")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Job.Site, truncate(r.Job.CompanyName, 20), truncate(r.Job.Title, 40), r.Job.Deadline, r.Job.URL)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "显示 %d 条 / 共 %d 条\n", len(records), total)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect <url>...",
	Short: "识别URL所属站点",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, u := range args {
			site, ok := core.DetectSite(u)
			name := "unsupported"
			if ok {
				name = string(site)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, u)
		}
	},
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	jobCmd.Flags().StringVarP(&platform, "platform", "p", "", "站点名 (saramin|jobplanet|incruit|wanted|linkedin),为空时按URL识别")
	jobCmd.Flags().StringVar(&storePath, "db", "", "SQLite数据库路径 (空=不保存)")

	listCmd.Flags().StringVar(&listSite, "site", "", "只列出指定站点")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "最多显示条数")
	listCmd.Flags().StringVar(&storePath, "db", "", "SQLite数据库路径")
}
