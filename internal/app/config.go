package app

import "time"

// Defaults shared by flag registration and file/env overlays.
const (
	DefaultConference  = "CVPR2024"
	DefaultLayout      = "cvf"
	DefaultImageDir    = "images"
	DefaultURLsFile    = "urls.txt"
	DefaultCacheDir    = ".paperscrape-cache"
	DefaultUserAgent   = "paperscrape/1.0 (+https://github.com/hyperifyio/paperscrape)"
	DefaultConcurrency = 4
)

// DefaultOutputs are written when no --out is given.
var DefaultOutputs = []string{"cvpr2024_papers.csv", "cvpr2024_papers.json"}

// Config holds runtime configuration for every subcommand.
type Config struct {
	// Scrape
	Source        string
	Conference    string
	Layout        string
	BaseURL       string
	Outputs       []string
	ExternalLink  bool
	RespectRobots bool
	// Manifest, when set, is the path of a JSON run manifest.
	Manifest string

	// Download
	URLsFile        string
	ImageDir        string
	Concurrency     int
	RatePerSecond   float64
	DownloadTimeout time.Duration

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	Prompt     string
	MaxTokens  int

	// Draw
	DrawURL    string
	DrawPoints int
	Headless   bool

	// Behavior
	UserAgent        string
	ProxyURL         string
	HTTPTimeout      time.Duration
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	NoCache          bool
	Verbose          bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Conference:      DefaultConference,
		Layout:          DefaultLayout,
		Outputs:         append([]string(nil), DefaultOutputs...),
		URLsFile:        DefaultURLsFile,
		ImageDir:        DefaultImageDir,
		Concurrency:     DefaultConcurrency,
		DownloadTimeout: 10 * time.Second,
		DrawPoints:      100,
		UserAgent:       DefaultUserAgent,
		HTTPTimeout:     30 * time.Second,
		CacheDir:        DefaultCacheDir,
	}
}
