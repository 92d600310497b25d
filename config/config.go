package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// ScannerConfig controla el comportamiento del scanner.
type ScannerConfig struct {
	IntervalSeconds  int      `yaml:"interval_seconds"`
	Tags             []string `yaml:"tags"`
	MinLiquidity     float64  `yaml:"min_liquidity"`
	MinVolume        float64  `yaml:"min_volume"`
	ArbThreshold     float64  `yaml:"arb_threshold"`
	MinCoverage      float64  `yaml:"min_coverage"`
	CoverProbability float64  `yaml:"cover_probability"`
	ArbBand          float64  `yaml:"arb_band"`
	MaxGroupSize     int      `yaml:"max_group_size"`
	PersistTopHedges int      `yaml:"persist_top_hedges"`
	ReportTop        int      `yaml:"report_top"`
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
	WSBase    string `yaml:"ws_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// TelegramConfig habilita el notifier de Telegram. Token y chat ID vienen
// del entorno, nunca del YAML.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"-"`
	ChatID  string `yaml:"-"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// Validate comprueba que la configuración sea operable. Una configuración
// inválida es fatal en el arranque, nunca se degrada en silencio.
func (c *Config) Validate() error {
	if c.Scanner.CoverProbability <= 0 || c.Scanner.CoverProbability > 1 {
		return fmt.Errorf("config: cover_probability %v out of (0, 1]", c.Scanner.CoverProbability)
	}
	if c.Scanner.MinCoverage <= 0 || c.Scanner.MinCoverage > 1 {
		return fmt.Errorf("config: min_coverage %v out of (0, 1]", c.Scanner.MinCoverage)
	}
	if c.Scanner.ArbThreshold <= 0 {
		return fmt.Errorf("config: arb_threshold %v must be positive", c.Scanner.ArbThreshold)
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("config: telegram enabled but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing")
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SCANNER_TAGS"); v != "" {
		parts := strings.Split(v, ",")
		tags := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				tags = append(tags, p)
			}
		}
		cfg.Scanner.Tags = tags
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 300
	}
	if len(cfg.Scanner.Tags) == 0 {
		cfg.Scanner.Tags = []string{"crypto", "bitcoin"}
	}
	if cfg.Scanner.MinLiquidity <= 0 {
		cfg.Scanner.MinLiquidity = 10_000
	}
	if cfg.Scanner.MinVolume <= 0 {
		cfg.Scanner.MinVolume = 5_000
	}
	if cfg.Scanner.ArbThreshold <= 0 {
		cfg.Scanner.ArbThreshold = 0.01
	}
	if cfg.Scanner.MinCoverage <= 0 {
		cfg.Scanner.MinCoverage = 0.85
	}
	if cfg.Scanner.CoverProbability <= 0 {
		cfg.Scanner.CoverProbability = 0.98
	}
	if cfg.Scanner.ArbBand <= 0 {
		cfg.Scanner.ArbBand = 0.02
	}
	if cfg.Scanner.MaxGroupSize <= 0 {
		cfg.Scanner.MaxGroupSize = 25
	}
	if cfg.Scanner.PersistTopHedges <= 0 {
		cfg.Scanner.PersistTopHedges = 20
	}
	if cfg.Scanner.ReportTop <= 0 {
		cfg.Scanner.ReportTop = 5
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.WSBase == "" {
		cfg.API.WSBase = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyhedge.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
