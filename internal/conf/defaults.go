// defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "VoxCode")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "voxcode.log")
	viper.SetDefault("main.log.maxsize", 10)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxage", 28)

	viper.SetDefault("audio.source", "sysdefault")
	viper.SetDefault("audio.samplerate", 16000)
	viper.SetDefault("audio.channels", 1)
	viper.SetDefault("audio.silence.threshold", 0.01)
	viper.SetDefault("audio.silence.duration", 1.5)
	viper.SetDefault("audio.silence.minrecording", 2.0)
	viper.SetDefault("audio.silence.pollinterval", 100*time.Millisecond)
	viper.SetDefault("audio.export.path", "")

	viper.SetDefault("provider.name", "gemini")
	viper.SetDefault("provider.model", "")
	viper.SetDefault("provider.apikey", "")
	viper.SetDefault("provider.languagefrom", "pt")
	viper.SetDefault("provider.languageto", "en")

	viper.SetDefault("ui.enabled", true)
	viper.SetDefault("ui.host", "localhost")
	viper.SetDefault("ui.port", 8765)

	viper.SetDefault("injection.enabled", true)
	viper.SetDefault("injection.tool", "")
	viper.SetDefault("injection.chunksize", 25)
	viper.SetDefault("injection.interval", 5*time.Millisecond)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "localhost:9190")
}
