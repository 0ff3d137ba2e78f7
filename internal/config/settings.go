package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are the business rules read from quoteflow.yml. They can be
// edited while the process runs.
type Settings struct {
	Quotation QuotationSettings `mapstructure:"quotation"`
	Outbound  OutboundSettings  `mapstructure:"outbound"`
	Render    RenderSettings    `mapstructure:"render"`
}

type QuotationSettings struct {
	TaxRate            float64 `mapstructure:"taxRate"`
	TaxLabel           string  `mapstructure:"taxLabel"`
	Currency           string  `mapstructure:"currency"`
	ValidityDays       int     `mapstructure:"validityDays"`
	CodeTemplate       string  `mapstructure:"codeTemplate"`
	SellerCodeTemplate string  `mapstructure:"sellerCodeTemplate"`
	CodeAttempts       int     `mapstructure:"codeAttempts"`
}

type OutboundSettings struct {
	DefaultRegion string `mapstructure:"defaultRegion"`
	LinkBase      string `mapstructure:"linkBase"`
}

type RenderSettings struct {
	Parallelism int  `mapstructure:"parallelism"`
	Compress    bool `mapstructure:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Quotation: QuotationSettings{
			TaxRate:            0.18,
			TaxLabel:           "GST",
			Currency:           "INR",
			ValidityDays:       7,
			CodeTemplate:       "Q{YY}{MM}{DD}-{RAND6}",
			SellerCodeTemplate: "SQ{YY}{MM}{DD}-{RAND6}",
			CodeAttempts:       5,
		},
		Outbound: OutboundSettings{
			DefaultRegion: "IN",
			LinkBase:      "https://wa.me/",
		},
		Render: RenderSettings{
			Parallelism: 1,
			Compress:    true,
		},
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

// NewStaticSettings returns a holder that never reloads.
func NewStaticSettings(s Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(normalizeSettings(s))
	return holder
}

func NewSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	log = log.Named("config.settings")
	v := viper.New()

	v.SetConfigName("quoteflow")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/quoteflow")
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUOTEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultSettings())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Info("settings file not found, using defaults")
	}

	cfg, err := readSettings(v)
	if err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readSettings(v)
		if err != nil {
			log.Warn("settings reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("quotation.taxRate", d.Quotation.TaxRate)
	v.SetDefault("quotation.taxLabel", d.Quotation.TaxLabel)
	v.SetDefault("quotation.currency", d.Quotation.Currency)
	v.SetDefault("quotation.validityDays", d.Quotation.ValidityDays)
	v.SetDefault("quotation.codeTemplate", d.Quotation.CodeTemplate)
	v.SetDefault("quotation.sellerCodeTemplate", d.Quotation.SellerCodeTemplate)
	v.SetDefault("quotation.codeAttempts", d.Quotation.CodeAttempts)
	v.SetDefault("outbound.defaultRegion", d.Outbound.DefaultRegion)
	v.SetDefault("outbound.linkBase", d.Outbound.LinkBase)
	v.SetDefault("render.parallelism", d.Render.Parallelism)
	v.SetDefault("render.compress", d.Render.Compress)
}

func readSettings(v *viper.Viper) (Settings, error) {
	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return Settings{}, err
	}
	if err := validateSettings(cfg); err != nil {
		return Settings{}, err
	}
	return normalizeSettings(cfg), nil
}

func validateSettings(cfg Settings) error {
	if cfg.Quotation.TaxRate < 0 || cfg.Quotation.TaxRate >= 1 {
		return errors.New("quotation.taxRate must be within [0, 1)")
	}
	if cfg.Quotation.ValidityDays < 0 {
		return errors.New("quotation.validityDays cannot be negative")
	}
	if strings.TrimSpace(cfg.Quotation.CodeTemplate) == "" {
		return errors.New("quotation.codeTemplate cannot be empty")
	}
	if strings.TrimSpace(cfg.Quotation.SellerCodeTemplate) == "" {
		return errors.New("quotation.sellerCodeTemplate cannot be empty")
	}
	return nil
}

func normalizeSettings(cfg Settings) Settings {
	if cfg.Quotation.CodeAttempts <= 0 {
		cfg.Quotation.CodeAttempts = 1
	}
	if strings.TrimSpace(cfg.Quotation.Currency) == "" {
		cfg.Quotation.Currency = "INR"
	}
	cfg.Outbound.DefaultRegion = strings.ToUpper(strings.TrimSpace(cfg.Outbound.DefaultRegion))
	if cfg.Outbound.LinkBase == "" {
		cfg.Outbound.LinkBase = "https://wa.me/"
	}
	if cfg.Render.Parallelism <= 0 {
		cfg.Render.Parallelism = 1
	}
	return cfg
}
