// 终端图集查看器入口：解析参数与配置，装配数据客户端、地图表面与界面后启动事件循环
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"atlas/internal/atlasapi"
	"atlas/internal/config"
	"atlas/internal/logger"
	"atlas/internal/mapview"
	"atlas/internal/metrics"
	"atlas/internal/search"
	"atlas/internal/tui"
	"atlas/internal/viewer"
)

var rootCmd = &cobra.Command{
	Use:           "atlas-viewer",
	Short:         "Terminal viewer for the atlas data API",
	Long:          "Browse castles, cities, towns, ruins, landmarks and kingdom boundaries served by atlas-api.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	// 终端界面独占终端；未指定日志文件时丢弃日志
	logOpts := logger.Options{Level: cfg.LogLevel, Output: io.Discard}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOpts.Output = f
	}
	l := logger.SetupWith(logOpts)
	l.Info("viewer_start", "api_base", cfg.APIBase, "locale", cfg.Locale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		ms := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			l.Info("metrics_listening", "addr", cfg.MetricsAddr)
			if err := ms.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				l.Error("metrics_server_error", "err", err)
			}
		}()
		defer ms.Close()
	}

	api := atlasapi.New(cfg.APIBase, &http.Client{Timeout: cfg.Timeout})
	surface := mapview.New(cfg.PickRadiusKm)
	panel := tui.NewPanel(80)
	v, err := viewer.New(api, surface, panel, search.New, viewer.Options{
		IconBaseURL: cfg.IconBase,
		Locale:      cfg.LocaleTag(),
		Breakpoint:  cfg.Breakpoint,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(ctx, v, surface, panel), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	l.Info("viewer_exit")
	return nil
}
