// mediaq/config/config.go
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	QueueKey      string `mapstructure:"QUEUE_KEY"`

	PollTimeout   time.Duration `mapstructure:"POLL_TIMEOUT"`
	PollBackoff   time.Duration `mapstructure:"POLL_BACKOFF"`
	ProcessingTTL time.Duration `mapstructure:"PROCESSING_TTL"`

	FFBin       string `mapstructure:"FF_BIN"`
	FFProbeBin  string `mapstructure:"FFPROBE_BIN"`
	FFExtraArgs string `mapstructure:"FF_EXTRA_ARGS"`

	OutputDir    string `mapstructure:"OUTPUT_DIR"`
	MaxInputSize int64  `mapstructure:"MAX_INPUT_SIZE"`

	VideoCodec   string `mapstructure:"VIDEO_CODEC"`
	VideoCRF     int    `mapstructure:"VIDEO_CRF"`
	VideoPreset  string `mapstructure:"VIDEO_PRESET"`
	VideoWidth   int    `mapstructure:"VIDEO_WIDTH"`
	VideoHeight  int    `mapstructure:"VIDEO_HEIGHT"`
	AudioCodec   string `mapstructure:"AUDIO_CODEC"`
	AudioBitrate string `mapstructure:"AUDIO_BITRATE"`
	ThumbWidth   int    `mapstructure:"THUMB_WIDTH"`

	ThrottleCPU      float64 `mapstructure:"THROTTLE_CPU"`
	ThrottleFreeMem  int64   `mapstructure:"THROTTLE_FREEMEM"`
	ThrottleFreeDisk int64   `mapstructure:"THROTTLE_FREEDISK"`

	APIEnable  bool   `mapstructure:"API_ENABLE"`
	AuthEnable bool   `mapstructure:"AUTH_ENABLE"`
	AuthKey    string `mapstructure:"AUTH_KEY"`
	Port       string `mapstructure:"PORT"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioInBucket  string `mapstructure:"MINIO_IN_BUCKET"`
	MinioOutBucket string `mapstructure:"MINIO_OUT_BUCKET"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	TempDir string
}

// stringToDurationHookFunc is a custom Viper hook for parsing Go's duration strings.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}

// stringToByteSizeHookFunc is a custom Viper hook for parsing human-readable size strings.
func stringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int64 {
			return data, nil
		}

		var size datasize.ByteSize
		err := size.UnmarshalText([]byte(data.(string)))
		if err != nil {
			// Not a valid size string, let other parsers handle it.
			return data, nil
		}

		return int64(size.Bytes()), nil
	}
}

func Load() (*Config, error) {
	vp := viper.New()

	// Set default values as strings, the hooks will handle them.
	vp.SetDefault("REDIS_ADDR", "localhost:6379")
	vp.SetDefault("REDIS_PASSWORD", "")
	vp.SetDefault("REDIS_DB", 0)
	vp.SetDefault("QUEUE_KEY", "media:jobs:queue")
	vp.SetDefault("POLL_TIMEOUT", "5s")
	vp.SetDefault("POLL_BACKOFF", "3s")
	vp.SetDefault("PROCESSING_TTL", "2m")
	vp.SetDefault("FF_BIN", "ffmpeg")
	vp.SetDefault("FFPROBE_BIN", "ffprobe")
	vp.SetDefault("FF_EXTRA_ARGS", "")
	vp.SetDefault("OUTPUT_DIR", "./outputs")
	vp.SetDefault("MAX_INPUT_SIZE", "2GB")
	vp.SetDefault("VIDEO_CODEC", "libx264")
	vp.SetDefault("VIDEO_CRF", 28)
	vp.SetDefault("VIDEO_PRESET", "medium")
	vp.SetDefault("VIDEO_WIDTH", 1280)
	vp.SetDefault("VIDEO_HEIGHT", 720)
	vp.SetDefault("AUDIO_CODEC", "aac")
	vp.SetDefault("AUDIO_BITRATE", "128k")
	vp.SetDefault("THUMB_WIDTH", 320)
	vp.SetDefault("THROTTLE_CPU", 0.0)
	vp.SetDefault("THROTTLE_FREEMEM", "0B")
	vp.SetDefault("THROTTLE_FREEDISK", "0B")
	vp.SetDefault("API_ENABLE", true)
	vp.SetDefault("AUTH_ENABLE", false)
	vp.SetDefault("AUTH_KEY", "123456")
	vp.SetDefault("PORT", "8080")
	vp.SetDefault("STORAGE_BACKEND", "local")
	vp.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	vp.SetDefault("MINIO_ACCESS_KEY", "minio")
	vp.SetDefault("MINIO_SECRET_KEY", "minio123")
	vp.SetDefault("MINIO_USE_SSL", false)
	vp.SetDefault("MINIO_IN_BUCKET", "uploads")
	vp.SetDefault("MINIO_OUT_BUCKET", "outputs")
	vp.SetDefault("LOG_LEVEL", "info")

	// Load from config file
	vp.SetConfigName("mediaq_config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("/etc/mediaq/")

	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Load from environment variables
	vp.SetEnvPrefix("MEDIAQ")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	var cfg Config
	err := vp.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			stringToDurationHookFunc(),
			stringToByteSizeHookFunc(),
		),
	))
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
