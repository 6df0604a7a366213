package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"equitylens"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		BarsTopic    string   `yaml:"bars_topic" default:"equitylens.bars"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"500ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"equitylens-bars"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"1024"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Cache struct {
		Enabled   bool          `yaml:"enabled"`
		Addr      string        `yaml:"addr" default:"localhost:6379"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		Prefix    string        `yaml:"prefix" default:"equitylens"`
		ReportTTL time.Duration `yaml:"report_ttl" default:"30m"`
	} `yaml:"cache"`
	Jobs struct {
		Enabled         bool          `yaml:"enabled"`
		Workers         int           `yaml:"workers" default:"2"`
		RetryLimit      int           `yaml:"retry_limit" default:"3"`
		RetryDelay      time.Duration `yaml:"retry_delay" default:"30s"`
		RefreshInterval time.Duration `yaml:"refresh_interval" default:"6h"`
		RefreshDays     int           `yaml:"refresh_days" default:"365"`
	} `yaml:"jobs"`
	MarketData struct {
		APIKey              string        `yaml:"api_key"`
		WebSocketURL        string        `yaml:"websocket_url"`
		FundamentalsURL     string        `yaml:"fundamentals_url"`
		FundamentalsRefresh time.Duration `yaml:"fundamentals_refresh" default:"24h"`
		Symbols             []string      `yaml:"symbols"`
		ReconnectDelay      time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval        time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"market_data"`
	Engine Engine `yaml:"engine"`
}

// Engine holds every analysis parameter. It is plain data threaded through
// the engine components as an immutable value; nothing in the engine reads
// ambient state.
type Engine struct {
	Indicators     Indicators     `yaml:"indicators"`
	Technical      Technical      `yaml:"technical"`
	Fundamental    Fundamental    `yaml:"fundamental"`
	Ensemble       Ensemble       `yaml:"ensemble"`
	Risk           Risk           `yaml:"risk"`
	Recommendation Recommendation `yaml:"recommendation"`
}

// Indicators configures lookback windows for the indicator library.
type Indicators struct {
	SMAShort         int     `yaml:"sma_short" default:"20" validate:"gt=0"`
	SMAMedium        int     `yaml:"sma_medium" default:"50" validate:"gt=0"`
	SMALong          int     `yaml:"sma_long" default:"200" validate:"gt=0"`
	EMAFast          int     `yaml:"ema_fast" default:"12" validate:"gt=0"`
	EMASlow          int     `yaml:"ema_slow" default:"26" validate:"gt=0"`
	MACDSignal       int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"gt=1"`
	StochasticPeriod int     `yaml:"stochastic_period" default:"14" validate:"gt=0"`
	StochasticSmooth int     `yaml:"stochastic_smooth" default:"3" validate:"gt=0"`
	WilliamsPeriod   int     `yaml:"williams_period" default:"14" validate:"gt=0"`
	BollingerPeriod  int     `yaml:"bollinger_period" default:"20" validate:"gt=1"`
	BollingerStdDev  float64 `yaml:"bollinger_std_dev" default:"2.0" validate:"gt=0"`
	ATRPeriod        int     `yaml:"atr_period" default:"14" validate:"gt=0"`
	VolumeSMAPeriod  int     `yaml:"volume_sma_period" default:"20" validate:"gt=0"`
	RangeWindow      int     `yaml:"range_window" default:"20" validate:"gt=0"`
}

// Technical configures thresholds and weights for the technical scorer.
// Weights are relative; the score normalizes over the rules whose inputs
// were actually available.
type Technical struct {
	RSIOversold       float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,lte=100"`
	RSIOverbought     float64 `yaml:"rsi_overbought" default:"70" validate:"gte=0,lte=100"`
	StochOversold     float64 `yaml:"stoch_oversold" default:"20" validate:"gte=0,lte=100"`
	StochOverbought   float64 `yaml:"stoch_overbought" default:"80" validate:"gte=0,lte=100"`
	BollingerLowBand  float64 `yaml:"bollinger_low_band" default:"0.2" validate:"gte=0,lte=1"`
	BollingerHighBand float64 `yaml:"bollinger_high_band" default:"0.8" validate:"gte=0,lte=1"`

	RSIWeight       float64 `yaml:"rsi_weight" default:"1.0" validate:"gte=0"`
	MACDWeight      float64 `yaml:"macd_weight" default:"1.5" validate:"gte=0"`
	SMAShortWeight  float64 `yaml:"sma_short_weight" default:"1.0" validate:"gte=0"`
	SMAMediumWeight float64 `yaml:"sma_medium_weight" default:"1.0" validate:"gte=0"`
	SMALongWeight   float64 `yaml:"sma_long_weight" default:"1.5" validate:"gte=0"`
	TrendWeight     float64 `yaml:"trend_weight" default:"3.0" validate:"gte=0"`
	BollingerWeight float64 `yaml:"bollinger_weight" default:"0.5" validate:"gte=0"`
	StochWeight     float64 `yaml:"stoch_weight" default:"0.5" validate:"gte=0"`
}

// Fundamental configures the sector-agnostic reference bands. For ratios
// where lower is better (P/E, P/B, EV/EBITDA, debt/equity) Low marks the
// attractive edge and High the expensive one; for the rest the reading is
// reversed. Growth and margin bands are in percent.
type Fundamental struct {
	PELow          float64 `yaml:"pe_low" default:"15"`
	PEHigh         float64 `yaml:"pe_high" default:"30"`
	PBLow          float64 `yaml:"pb_low" default:"1"`
	PBHigh         float64 `yaml:"pb_high" default:"3"`
	EVEBITDALow    float64 `yaml:"ev_ebitda_low" default:"10"`
	EVEBITDAHigh   float64 `yaml:"ev_ebitda_high" default:"20"`
	CurrentStrong  float64 `yaml:"current_strong" default:"2"`
	CurrentWeak    float64 `yaml:"current_weak" default:"1"`
	QuickGood      float64 `yaml:"quick_good" default:"1"`
	QuickPoor      float64 `yaml:"quick_poor" default:"0.5"`
	DebtEquityLow  float64 `yaml:"debt_equity_low" default:"0.5"`
	DebtEquityHigh float64 `yaml:"debt_equity_high" default:"2"`
	GrowthStrong   float64 `yaml:"growth_strong" default:"20"`
	GrowthModest   float64 `yaml:"growth_modest" default:"10"`
	EarningsStrong float64 `yaml:"earnings_strong" default:"25"`
	EarningsModest float64 `yaml:"earnings_modest" default:"10"`
	ROEStrong      float64 `yaml:"roe_strong" default:"20"`
	ROEModest      float64 `yaml:"roe_modest" default:"10"`
	ROEWeak        float64 `yaml:"roe_weak" default:"5"`
	ROAStrong      float64 `yaml:"roa_strong" default:"10"`
	ROAModest      float64 `yaml:"roa_modest" default:"5"`
	MarginStrong   float64 `yaml:"margin_strong" default:"20"`
	MarginModest   float64 `yaml:"margin_modest" default:"10"`
}

// Ensemble configures the prediction models and their fusion.
type Ensemble struct {
	MinHistory         int           `yaml:"min_history" default:"100" validate:"gt=1"`
	TrainWindow        int           `yaml:"train_window" default:"120" validate:"gt=10"`
	Horizons           []int         `yaml:"horizons" default:"[1,3,7]" validate:"min=1,dive,gt=0"`
	DirectionThreshold float64       `yaml:"direction_threshold" default:"0.02" validate:"gt=0"`
	ModelTimeout       time.Duration `yaml:"model_timeout" default:"10s" validate:"gt=0"`

	Linear struct {
		LogPrice bool `yaml:"log_price"`
	} `yaml:"linear"`
	ARIMA struct {
		MaxOrder int `yaml:"max_order" default:"5" validate:"gt=0,lte=20"`
		Diff     int `yaml:"diff" default:"1" validate:"gte=0,lte=2"`
	} `yaml:"arima"`
	Neural struct {
		Lags            int     `yaml:"lags" default:"10" validate:"gt=0"`
		Hidden          []int   `yaml:"hidden" default:"[16,8]" validate:"min=1,dive,gt=0"`
		Epochs          int     `yaml:"epochs" default:"200" validate:"gt=0"`
		LearningRate    float64 `yaml:"learning_rate" default:"0.01" validate:"gt=0"`
		Seed            int64   `yaml:"seed" default:"42"`
		ValidationSplit float64 `yaml:"validation_split" default:"0.2" validate:"gt=0,lt=1"`
	} `yaml:"neural"`
}

// Risk configures the volatility/drawdown assessment. Reference vols are
// annualized fractions; thresholds are on the 0-100 volatility score and the
// drawdown percentage.
type Risk struct {
	VolatilityWindow int     `yaml:"volatility_window" default:"20" validate:"gt=1"`
	DrawdownWindow   int     `yaml:"drawdown_window" default:"252" validate:"gt=1"`
	RefVolLow        float64 `yaml:"ref_vol_low" default:"0.10" validate:"gt=0"`
	RefVolHigh       float64 `yaml:"ref_vol_high" default:"0.60" validate:"gt=0"`
	VolHigh          float64 `yaml:"vol_high" default:"70" validate:"gte=0,lte=100"`
	VolLow           float64 `yaml:"vol_low" default:"30" validate:"gte=0,lte=100"`
	DrawdownHigh     float64 `yaml:"drawdown_high" default:"40" validate:"gte=0"`
	DrawdownLow      float64 `yaml:"drawdown_low" default:"15" validate:"gte=0"`
}

// Recommendation configures the final blend and action thresholds.
type Recommendation struct {
	TechnicalWeight   float64 `yaml:"technical_weight" default:"0.5" validate:"gte=0"`
	FundamentalWeight float64 `yaml:"fundamental_weight" default:"0.3" validate:"gte=0"`
	PredictionWeight  float64 `yaml:"prediction_weight" default:"0.2" validate:"gte=0"`
	BuyThreshold      float64 `yaml:"buy_threshold" default:"70" validate:"gte=0,lte=100"`
	SellThreshold     float64 `yaml:"sell_threshold" default:"30" validate:"gte=0,lte=100"`
	ConfidenceSlope   float64 `yaml:"confidence_slope" default:"2.5" validate:"gt=0"`
}

var structValidator = validator.New()

// Load reads and parses a YAML configuration file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Default returns a Config carrying only defaults, without reading a file.
// Used by tests and by embedders running the engine as a library.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.Environment = "test"
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and connection
// targets with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETDATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.MarketData.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}

	return c, nil
}

// Validate checks structural validity plus the relations the tag language
// cannot express. A failure here is fatal at startup; there is no partial run
// with a broken configuration.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return c.Engine.Validate()
}

// Validate checks the engine section. Exposed separately so the engine can
// be constructed from a bare Engine value.
func (e *Engine) Validate() error {
	if err := structValidator.Struct(e); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if e.Recommendation.SellThreshold >= e.Recommendation.BuyThreshold {
		return fmt.Errorf("engine config: sell_threshold %.1f must be below buy_threshold %.1f",
			e.Recommendation.SellThreshold, e.Recommendation.BuyThreshold)
	}
	total := e.Recommendation.TechnicalWeight + e.Recommendation.FundamentalWeight + e.Recommendation.PredictionWeight
	if total <= 0 {
		return fmt.Errorf("engine config: at least one recommendation weight must be positive")
	}
	if e.Indicators.EMAFast >= e.Indicators.EMASlow {
		return fmt.Errorf("engine config: ema_fast %d must be below ema_slow %d",
			e.Indicators.EMAFast, e.Indicators.EMASlow)
	}
	if e.Risk.RefVolLow >= e.Risk.RefVolHigh {
		return fmt.Errorf("engine config: ref_vol_low must be below ref_vol_high")
	}
	return nil
}
