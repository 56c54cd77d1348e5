// generate_cache 从访谈数据库计算指定周期的排行榜并写入缓存，供无数据库连接的部署直接读取
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ra-leaderboard-service/logger"
	"ra-leaderboard-service/service"
	"ra-leaderboard-service/service/cache"
	"ra-leaderboard-service/service/config"
	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/scoring"
)

var (
	cfgFile  string
	month    int
	year     int
	showOnly bool
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "generate_cache",
	Short: "计算周期排行榜并写入缓存",
	Long: `从访谈数据库拉取完成记录、质量问题与访谈活动，计算自动评分后写入缓存文件，
并在终端打印排行榜。未指定 --month/--year 时使用当前月份。`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "配置文件（默认读取 RAOTM_CONFIG）")
	rootCmd.Flags().IntVar(&month, "month", 0, "月份 1-12")
	rootCmd.Flags().IntVar(&year, "year", 0, "年份")
	rootCmd.Flags().BoolVar(&showOnly, "show", false, "只打印已有缓存，不访问数据库")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "关闭彩色输出")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := validatePeriodFlags(month, year); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Log.Level)

	rubric, err := scoring.LoadRubric()
	if err != nil {
		return err
	}

	// 与服务使用相同的人工评分存储，打印的总分才一致
	scores, _, err := service.OpenScoreStore(cfg)
	if err != nil {
		return err
	}
	defer scores.Close()

	deps := leaderboard.Dependencies{
		Cache:  cache.NewMetricsCache(filepath.Join(cfg.DataDir, "cache")),
		Scores: scores,
	}

	if !showOnly {
		if !cfg.RefreshEnabled() {
			return fmt.Errorf("未配置访谈数据库（RAOTM_SOURCE_DSN 或 DB_CONN）")
		}
		fetcher, querier, err := service.OpenFeedSource(cfg)
		if err != nil {
			return err
		}
		defer querier.Close()
		if err := querier.Ping(ctx); err != nil {
			return err
		}
		deps.Fetcher = fetcher
	}

	svc := leaderboard.NewService(deps)
	current := svc.Current()
	if month == 0 {
		month = current.Month
	}
	if year == 0 {
		year = current.Year
	}

	if !showOnly {
		started := time.Now()
		result, err := svc.Refresh(ctx, month, year)
		if err != nil {
			return err
		}
		fmt.Printf("已缓存 %s：%d 名RA，用时 %s\n",
			result.Period.Label, result.RACount, time.Since(started).Round(time.Millisecond))
	}

	lb, err := svc.Leaderboard(ctx, month, year)
	if err != nil {
		return err
	}
	fmt.Print(newTableRenderer(!noColor, rubric).Render(lb))
	return nil
}

// validatePeriodFlags 0 表示当前月份/年份
func validatePeriodFlags(month, year int) error {
	if month != 0 && (month < 1 || month > 12) {
		return fmt.Errorf("--month 必须在1到12之间: %d", month)
	}
	if year != 0 && (year < 2000 || year > 2100) {
		return fmt.Errorf("--year 必须在2000到2100之间: %d", year)
	}
	return nil
}
