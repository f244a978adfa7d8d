package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files into the process environment. Later files
// override earlier ones and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Overload(p); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnvOverrides overrides cfg fields whose environment variables are
// set. It runs after the config file so env wins over file, and before
// explicit flags are applied.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.LLMAPIKey, "OPENAI_API_KEY")
	setString(&cfg.LLMBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LLMModel, "OPENAI_MODEL")
	setString(&cfg.ProxyURL, "HTTPS_PROXY", "https_proxy")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.Conference, "CONFERENCE")

	if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if s := os.Getenv("DOWNLOAD_CONCURRENCY"); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}

	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
}
