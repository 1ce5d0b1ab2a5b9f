package config

import "time"

// RecommenderConfig points at the external study-help service
type RecommenderConfig struct {
	BaseURL   string `json:"baseUrl"`
	TimeoutMS int    `json:"timeoutMs"`
	// VideoCacheTTL controls how long suggestions per major are reused
	VideoCacheTTL time.Duration `json:"videoCacheTtl"`
}

// DefaultRecommenderConfig returns the recommender configuration from the environment
func DefaultRecommenderConfig() RecommenderConfig {
	return RecommenderConfig{
		BaseURL:       getEnv("RECOMMENDER_URL", "http://localhost:8888"),
		TimeoutMS:     getInt("RECOMMENDER_TIMEOUT_MS", 10000),
		VideoCacheTTL: getDuration("RECOMMENDER_VIDEO_TTL", 6*time.Hour),
	}
}

// IsEnabled returns true if a service URL is configured
func (c RecommenderConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Timeout is the per-request HTTP timeout
func (c RecommenderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Endpoint joins the base URL with an API path
func (c RecommenderConfig) Endpoint(path string) string {
	return c.BaseURL + path
}
