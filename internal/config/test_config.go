package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:        "http://%s.localhost/w/api.php",
			ListingLanguage: "en",
			HTTPTimeout:     5 * time.Second,
			UserAgent:       "wikr-test/1.0",
			ThumbSize:       400,
			AllowLocalhost:  true,
		},
		Feed: FeedConfig{
			Debounce:     500 * time.Millisecond,
			DefaultTopic: "onThisDay",
			Language:     "zh",
			DiscardStale: true,
		},
		UI:    defaultConfig().UI,
		Media: defaultConfig().Media,
		Keys:  defaultConfig().Keys,
		Log:   LogConfig{Level: "off"},
	}
}
