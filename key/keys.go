// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Downloader Engine - these keys govern the multi-source resolution and download pipeline.
const (
	DownloaderTimeout     = "downloader.timeout"
	DownloaderRetries     = "downloader.retries"
	DownloaderQuality     = "downloader.quality"
	DownloaderConcurrency = "downloader.concurrency"
	DownloaderProxy       = "downloader.proxy"
	DownloaderHeaders     = "downloader.headers"
	DownloaderPath        = "downloader.path"
)

// Result Cache - these keys configure the time-bounded memoization of prior resolutions.
const (
	CacheEnabled = "cache.enabled"
	CacheMaxAge  = "cache.max_age"
)

// History Tracking - these keys configure the persistence of completed downloads.
const (
	HistorySaveOnDownload = "history.save_on_download"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Diagnostics - these keys manage structured log emission.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Behavior - these keys define the non-interactive command surface.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
