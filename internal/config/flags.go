package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and the FPS log")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagAssets     = flag.String("assets", "", "Asset root directory, or an http(s) base URL")
	flagScene      = flag.String("scene", "", "Path to a YAML scene file replacing the configured scene")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// ScenePath returns the scene file path if provided via --scene flag.
func ScenePath() string {
	return *flagScene
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Window.ShowFPS = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagAssets != "" {
		applyAssetSource(cfg, *flagAssets)
	}
}

// applyAssetSource routes a URL to BaseURL and anything else to Root.
func applyAssetSource(cfg *Config, source string) {
	if isURL(source) {
		cfg.Assets.BaseURL = source
		return
	}
	cfg.Assets.Root = source
	cfg.Assets.BaseURL = ""
}
