package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	StoreDriver string
	DatabaseURL string
	RedisAddr   string

	SessionDate  string
	PollInterval time.Duration

	AnnounceCooldown  time.Duration
	AnnounceMinRepeat time.Duration

	SynthesisEndpoint string
	SynthesisAPIKey   string
	SynthesisVoice    string
	SynthesisTimeout  time.Duration
	LocalSynthesis    string
	PlayerCommand     string

	RateLimitPerMinute int
	RateLimitBurst     int

	TraceEndpoint string
	TraceInsecure bool

	MasterAdminUsername string
	MasterAdminPassword string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	sessionDate := os.Getenv("SESSION_DATE")
	if sessionDate == "" {
		sessionDate = time.Now().UTC().Format("2006-01-02")
	}

	driver := os.Getenv("STORE_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	masterAdmin := os.Getenv("MASTER_ADMIN_USERNAME")
	if masterAdmin == "" {
		masterAdmin = "MASTER.ADMIN"
	}

	return Config{
		Port:        port,
		StoreDriver: driver,
		DatabaseURL: os.Getenv("DB_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		SessionDate:  sessionDate,
		PollInterval: readDurationSeconds("POLL_INTERVAL_SECONDS", 10),

		AnnounceCooldown:  readDurationSeconds("ANNOUNCE_COOLDOWN_SECONDS", 3),
		AnnounceMinRepeat: readDurationSeconds("ANNOUNCE_MIN_REPEAT_SECONDS", 10),

		SynthesisEndpoint: os.Getenv("TTS_ENDPOINT"),
		SynthesisAPIKey:   os.Getenv("TTS_API_KEY"),
		SynthesisVoice:    os.Getenv("TTS_VOICE"),
		SynthesisTimeout:  readDurationSeconds("TTS_TIMEOUT_SECONDS", 4),
		LocalSynthesis:    os.Getenv("TTS_LOCAL"),
		PlayerCommand:     os.Getenv("AUDIO_PLAYER"),

		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),

		TraceEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TraceInsecure: readBool("OTEL_EXPORTER_OTLP_INSECURE", false),

		MasterAdminUsername: masterAdmin,
		MasterAdminPassword: os.Getenv("MASTER_ADMIN_PASSWORD"),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
