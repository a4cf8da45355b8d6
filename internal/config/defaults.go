package config

const (
	defaultConfigPath      = "~/.config/submod/config.toml"
	defaultEncoding        = "utf-8"
	defaultOutputSuffix    = "_submod"
	defaultOutputFormat    = ""
	defaultScriptExtension = ".submod"
	defaultFPSFrom         = 23.976
	defaultFPSTo           = 25
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Subtitles: Subtitles{
			DefaultEncoding: defaultEncoding,
			OutputSuffix:    defaultOutputSuffix,
			OutputFormat:    defaultOutputFormat,
		},
		Scripts: Scripts{
			Extension: defaultScriptExtension,
		},
		FPS: FPS{
			From: defaultFPSFrom,
			To:   defaultFPSTo,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
