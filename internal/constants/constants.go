package constants

import "time"

var CacheTTL = struct {
	WatchHistory time.Duration
	Ranking      time.Duration
	Search       time.Duration
}{
	WatchHistory: 10 * time.Minute,
	Ranking:      30 * time.Minute,
	Search:       15 * time.Minute,
}

var APIConfig = struct {
	MALBaseURL       string
	MALTimeout       time.Duration
	HistoryPageLimit int
}{
	MALBaseURL:       "https://api.myanimelist.net/v2",
	MALTimeout:       10 * time.Second,
	HistoryPageLimit: 1000,
}

// RecommendConfig holds the empirically tuned thresholds of the scoring
// pipeline. The values are behavioral constants, not derived; change with care.
var RecommendConfig = struct {
	QualityFloor       float64 // absolute minimum mean for similarity candidates
	GenericFloor       float64 // minimum mean for genre/studio lane candidates
	MaxPopularityRank  int     // generic lanes reject ranks beyond this
	MinListUsers       int     // generic lanes reject titles with fewer raters
	HighRatedThreshold int     // user score that admits an entry to the anchor pool

	GemMinMean      float64
	GemMinRank      int
	GemMaxRank      int
	GemMinListUsers int

	RankingPoolSize int
	SearchPoolSize  int
	SimilarityCount int
	GenreCount      int
	StudioCount     int
	HiddenGemCount  int
	TopGenres       int
	TopStudios      int
}{
	QualityFloor:       7.5,
	GenericFloor:       6.5,
	MaxPopularityRank:  5000,
	MinListUsers:       10000,
	HighRatedThreshold: 8,

	GemMinMean:      7.0,
	GemMinRank:      1000,
	GemMaxRank:      5000,
	GemMinListUsers: 5000,

	RankingPoolSize: 500,
	SearchPoolSize:  100,
	SimilarityCount: 6,
	GenreCount:      10,
	StudioCount:     8,
	HiddenGemCount:  8,
	TopGenres:       5,
	TopStudios:      3,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var AIInputLimits = struct {
	MaxQueryLength   int
	MaxContextTitles int
}{
	MaxQueryLength:   500,
	MaxContextTitles: 20,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var ServerConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	ReadTimeout:     15 * time.Second,
	WriteTimeout:    60 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}
