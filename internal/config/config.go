package config

import (
	"fmt"
	"os"
	"strconv"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath       = "configs/config.yaml"
	DefaultSQLitePath = "data/marketlens.db"
	DefaultServerAddr = ":8080"
	DefaultWatchCron  = "0 0 22 * * 1-5"
)

// Config holds all application configuration.
type Config struct {
	AlphaVantage struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"alpha_vantage"`
	Indicators calculator.Params `yaml:"indicators"`
	Watch      []WatchJob        `yaml:"watch"`
	Telegram   struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// WatchJob is one scheduled fetch: a series request plus the cron spec
// (with seconds) that triggers it.
type WatchJob struct {
	Symbol     string `yaml:"symbol"`
	Kind       string `yaml:"kind"`
	Interval   string `yaml:"interval"`
	OutputSize string `yaml:"output_size"`
	Cron       string `yaml:"cron"`
}

// Request converts the job into a loader request.
func (j WatchJob) Request() (model.Request, error) {
	kind, err := model.ParseSeriesKind(j.Kind)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		Kind:       kind,
		Symbol:     j.Symbol,
		Interval:   j.Interval,
		OutputSize: j.OutputSize,
	}.WithDefaults(), nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_BASE_URL"); v != "" {
		cfg.AlphaVantage.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AlphaVantage.TimeoutSeconds <= 0 {
		c.AlphaVantage.TimeoutSeconds = 30
	}

	// Zero-valued indicator fields fall back one by one so a config can
	// override a single window.
	def := calculator.DefaultParams()
	p := &c.Indicators
	if p.MAWindow == 0 {
		p.MAWindow = def.MAWindow
	}
	if p.MACDFast == 0 {
		p.MACDFast = def.MACDFast
	}
	if p.MACDSlow == 0 {
		p.MACDSlow = def.MACDSlow
	}
	if p.MACDSignal == 0 {
		p.MACDSignal = def.MACDSignal
	}
	if p.RSIWindow == 0 {
		p.RSIWindow = def.RSIWindow
	}
	if p.BBWindow == 0 {
		p.BBWindow = def.BBWindow
	}
	if p.BBStdDev == 0 {
		p.BBStdDev = def.BBStdDev
	}
	if p.RangeWindow == 0 {
		p.RangeWindow = def.RangeWindow
	}

	for i := range c.Watch {
		if c.Watch[i].Cron == "" {
			c.Watch[i].Cron = DefaultWatchCron
		}
		if c.Watch[i].Kind == "" {
			c.Watch[i].Kind = string(model.KindDaily)
		}
	}

	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = DefaultSQLitePath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("alpha_vantage.api_key is required")
	}
	p := c.Indicators
	for name, w := range map[string]int{
		"ma_window":   p.MAWindow,
		"macd_fast":   p.MACDFast,
		"macd_slow":   p.MACDSlow,
		"macd_signal": p.MACDSignal,
		"bb_window":   p.BBWindow,
	} {
		if w <= 0 {
			return fmt.Errorf("indicators.%s must be positive, got %d", name, w)
		}
	}
	if p.RSIWindow < 2 {
		return fmt.Errorf("indicators.rsi_window must be at least 2, got %d", p.RSIWindow)
	}
	if p.BBStdDev <= 0 {
		return fmt.Errorf("indicators.bb_std_dev must be positive, got %s", strconv.FormatFloat(p.BBStdDev, 'f', -1, 64))
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for i, job := range c.Watch {
		req, err := job.Request()
		if err != nil {
			return fmt.Errorf("watch[%d]: %w", i, err)
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("watch[%d]: %w", i, err)
		}
		if _, err := parser.Parse(job.Cron); err != nil {
			return fmt.Errorf("watch[%d].cron %q: %w", i, job.Cron, err)
		}
	}
	return nil
}

// ValidateTelegram checks the settings the watch mode needs on top of Validate.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
