package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "https://quotes.toscrape.com"
	}
	if cfg.Source.MaxPages == 0 {
		cfg.Source.MaxPages = 50
	}
	if cfg.Source.PageTimeout == 0 {
		cfg.Source.PageTimeout = Duration(15 * time.Second)
	}
	if cfg.Source.PageDelay == 0 {
		cfg.Source.PageDelay = Duration(250 * time.Millisecond)
	}
	if cfg.Source.Retry.MaxAttempts == 0 {
		cfg.Source.Retry.MaxAttempts = 3
	}
	if cfg.Source.Retry.InitialDelay == 0 {
		cfg.Source.Retry.InitialDelay = Duration(500 * time.Millisecond)
	}
	if cfg.Source.Retry.MaxDelay == 0 {
		cfg.Source.Retry.MaxDelay = Duration(10 * time.Second)
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/meigen/data/quotes.db"
	}
	if cfg.Index.LSIDimensions == 0 {
		cfg.Index.LSIDimensions = 100
	}
	if cfg.Index.MinDocFreq == 0 {
		cfg.Index.MinDocFreq = 1
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Stats.TopN == 0 {
		cfg.Stats.TopN = 10
	}
}
