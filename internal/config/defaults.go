package config

const (
	defaultConfigPath          = "~/.config/sortmedown/config.toml"
	defaultStateDir            = "~/.local/share/sortmedown"
	defaultMismatchedName      = "_Mismatched"
	defaultHistoryFile         = "history.db"
	defaultPrimaryProvider     = ProviderOMDb
	defaultOMDbURL             = "http://www.omdbapi.com/"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "en-US"
	defaultAniListURL          = "https://graphql.anilist.co"
	defaultRequestDelaySeconds = 1.0
	defaultTimeoutSeconds      = 10
	defaultUserAgent           = "SortMeDown/Engine/5.1"
	defaultWatchInterval       = 15 * 60
	defaultFallback            = FallbackMismatched
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNtfyTimeout         = 10

	// placeholderAPIKey is the value shipped in sample configs; it never authenticates.
	placeholderAPIKey = "yourkey"
)

// Provider selectors for providers.primary.
const (
	ProviderOMDb = "omdb"
	ProviderTMDB = "tmdb"
)

// Fallback policies for unresolved series.
const (
	FallbackIgnore     = "ignore"
	FallbackMismatched = "mismatched"
	FallbackTV         = "tv"
	FallbackAnime      = "anime"
)

// SplitAll is the split_languages sentinel matching any non-English language.
const SplitAll = "all"

func defaultSupportedExtensions() []string {
	return []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".3gp", ".ogv", ".ts", ".m2ts", ".mts"}
}

func defaultSidecarExtensions() []string {
	return []string{".srt", ".sub", ".nfo", ".txt", ".jpg", ".png"}
}

func defaultJunkTokens() []string {
	return []string{"FRENCH", "TRUEFRENCH", "VOSTFR", "MULTI", "SUBFRENCH"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Providers: Providers{
			Primary:             defaultPrimaryProvider,
			OMDbURL:             defaultOMDbURL,
			TMDBBaseURL:         defaultTMDBBaseURL,
			TMDBLanguage:        defaultTMDBLanguage,
			AniListURL:          defaultAniListURL,
			RequestDelaySeconds: defaultRequestDelaySeconds,
			TimeoutSeconds:      defaultTimeoutSeconds,
			UserAgent:           defaultUserAgent,
		},
		Sorting: Sorting{
			MoviesEnabled:           true,
			TVEnabled:               true,
			AnimeMoviesEnabled:      true,
			AnimeSeriesEnabled:      true,
			SplitLanguages:          []string{"fr"},
			FallbackShowDestination: defaultFallback,
			SupportedExtensions:     defaultSupportedExtensions(),
			SidecarExtensions:       defaultSidecarExtensions(),
			JunkTokens:              defaultJunkTokens(),
		},
		Watch: Watch{
			IntervalSeconds: defaultWatchInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
			Unidentified:          true,
		},
	}
}
