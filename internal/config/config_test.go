package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadDefaultsAndFile(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	path := writeConfig(t, `
api:
  base_url: https://example.test/prod///
polling:
  interval: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.API.BaseURL != "https://example.test/prod" {
		t.Fatalf("base_url 未去除尾部斜杠: %q", cfg.API.BaseURL)
	}
	if cfg.Polling.Interval != 2*time.Second {
		t.Fatalf("interval 错误: %v", cfg.Polling.Interval)
	}
	if cfg.Polling.MaxBackoff != time.Minute {
		t.Fatalf("max_backoff 默认值错误: %v", cfg.Polling.MaxBackoff)
	}
	if cfg.API.MarketPath != "/api/market" || cfg.API.CurrencyPath != "/api/currency" {
		t.Fatalf("默认路径错误: %+v", cfg.API)
	}
	if cfg.App.IsDevelopment() {
		t.Fatal("默认环境应为 production")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("MARKETWATCH_API_BASE_URL", "https://env.test/")
	t.Setenv("MARKETWATCH_POLLING_INTERVAL", "15s")
	t.Setenv("MARKETWATCH_ALERTING_PAIRS", "XBT-AUD,ETH-AUD")

	cfg, err := Load(writeConfig(t, "app:\n  name: mw\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.API.BaseURL != "https://env.test" {
		t.Fatalf("环境变量未生效: %q", cfg.API.BaseURL)
	}
	if cfg.Polling.Interval != 15*time.Second {
		t.Fatalf("interval 未被覆盖: %v", cfg.Polling.Interval)
	}
	if len(cfg.Alerting.Pairs) != 2 || cfg.Alerting.Pairs[1] != "ETH-AUD" {
		t.Fatalf("pairs 解析错误: %v", cfg.Alerting.Pairs)
	}
}

func TestLoadAPIBaseFallback(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("API_BASE", "https://fallback.test//")

	cfg, err := Load(writeConfig(t, "app:\n  name: mw\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.API.BaseURL != "https://fallback.test" {
		t.Fatalf("API_BASE 未生效: %q", cfg.API.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:     AppConfig{Environment: "production"},
			API:     APIConfig{BaseURL: "https://example.test"},
			Polling: PollingConfig{Interval: 5 * time.Second, MaxBackoff: time.Minute},
			Export:  ExportConfig{MaxHistoryPoints: 10},
		}
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("合法配置校验失败: %v", err)
	}

	cases := map[string]func(*Config){
		"missing base url":   func(c *Config) { c.API.BaseURL = "" },
		"unknown env":        func(c *Config) { c.App.Environment = "staging" },
		"zero interval":      func(c *Config) { c.Polling.Interval = 0 },
		"backoff < interval": func(c *Config) { c.Polling.MaxBackoff = time.Second },
		"negative threshold": func(c *Config) { c.Alerting.ThresholdPct = -1 },
		"telegram no token":  func(c *Config) { c.Alerting.Telegram = TelegramConfig{Enabled: true, ChatID: "1"} },
		"history points":     func(c *Config) { c.Export.MaxHistoryPoints = 0 },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: 期望校验失败", name)
		}
	}

	dev := valid()
	dev.App.Environment = "development"
	dev.API.BaseURL = ""
	dev.API.DevProxyURL = "http://localhost:5173"
	if err := dev.Validate(); err != nil {
		t.Fatalf("开发环境无需 base_url: %v", err)
	}
}

func TestLoadDotenvOverload(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("MARKETWATCH_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatalf("写入 env 文件失败: %v", err)
	}
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("DOTENV_OVERLOAD", "1")
	t.Setenv("MARKETWATCH_DOTENV_PROBE", "from-env")

	loadDotenv()
	if got := os.Getenv("MARKETWATCH_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("DOTENV_OVERLOAD 未生效: %q", got)
	}
}
