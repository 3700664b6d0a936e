// 包 config：查看器配置，默认值 < 配置文件 < ATLAS_ 环境变量 < 命令行参数
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"atlas/internal/viewer"
)

// Viewer：终端查看器运行参数
type Viewer struct {
	APIBase      string        `mapstructure:"api-base"`
	IconBase     string        `mapstructure:"icon-base"`
	Locale       string        `mapstructure:"locale"`
	Breakpoint   int           `mapstructure:"breakpoint"`
	PickRadiusKm float64       `mapstructure:"pick-radius-km"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MetricsAddr  string        `mapstructure:"metrics-addr"`
	LogFile      string        `mapstructure:"log-file"`
	LogLevel     string        `mapstructure:"log-level"`
}

// LocaleTag：解析后的区域标签，用于面积数字分组
func (c Viewer) LocaleTag() language.Tag {
	t, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return t
}

// RegisterFlags：注册与配置键同名的命令行参数
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-base", "http://localhost:5000/api", "data API base URL")
	fs.String("icon-base", viewer.DefaultIconBaseURL, "marker icon base URL")
	fs.String("locale", "en", "locale for number formatting (BCP 47)")
	fs.Int("breakpoint", viewer.DefaultBreakpoint, "viewport width in px above which the info panel opens automatically")
	fs.Float64("pick-radius-km", 25, "marker hit radius in km")
	fs.Duration("timeout", 10*time.Second, "per-request timeout for the data API")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address when set")
	fs.String("log-file", "", "write logs to this file (stderr is used by the terminal UI)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("config", "", "config file (toml, yaml or json)")
}

// 文档注释：加载查看器配置
// 背景：配置文件来自 --config、ATLAS_CONFIG 或 ~/.config/atlas/viewer.*；默认路径不存在时忽略，显式指定时必须可读。
// 约束：fs 可为空；返回前校验 api-base 与 locale。
func Load(fs *pflag.FlagSet) (Viewer, error) {
	v := viper.New()
	v.SetDefault("api-base", "http://localhost:5000/api")
	v.SetDefault("icon-base", viewer.DefaultIconBaseURL)
	v.SetDefault("locale", "en")
	v.SetDefault("breakpoint", viewer.DefaultBreakpoint)
	v.SetDefault("pick-radius-km", 25.0)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("metrics-addr", "")
	v.SetDefault("log-file", "")
	v.SetDefault("log-level", "info")

	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Viewer{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	explicit := v.GetString("config")
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return Viewer{}, fmt.Errorf("read config %s: %w", explicit, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "atlas"))
		}
		v.SetConfigName("viewer")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Viewer{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Viewer
	if err := v.Unmarshal(&c); err != nil {
		return Viewer{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.APIBase == "" {
		return Viewer{}, errors.New("api-base is required")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return Viewer{}, fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	if c.Breakpoint < 0 {
		return Viewer{}, fmt.Errorf("breakpoint must be >= 0, got %d", c.Breakpoint)
	}
	return c, nil
}
