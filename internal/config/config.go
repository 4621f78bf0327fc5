package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Драйверы хранилища файлов
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageMinio  = "minio"
	StorageGCS    = "gcs"
)

type Config struct {
	// Server-side settings
	DatabaseDSN   string `env:"DATABASE_URI"`
	AuthSecret    string `env:"AUTH_SECRET"`
	BlobMaxSizeMB int    `env:"BLOB_MAX_MB"`
	LoginURL      string `env:"LOGIN_URL"`
	AdminUserIDs  string `env:"ADMIN_USER_IDS"` // через запятую

	// Хранилище файлов
	StorageDriver string `env:"STORAGE_DRIVER"`
	StorageRoot   string `env:"STORAGE_ROOT"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	GCSBucket           string `env:"GCS_BUCKET"`
	StorageEmulatorHost string `env:"STORAGE_EMULATOR_HOST"`

	// Троттлинг удаления
	DestroyDelay    time.Duration `env:"DESTROY_DELAY"`
	DestroyGuardTTL time.Duration `env:"DESTROY_GUARD_TTL"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"` // пусто: <UserConfigDir>/Bookshelf/auth_token
	Version   bool   `env:"-"`          // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{DestroyDelay: -1}
	_ = env.Parse(cfg)

	// значения из env становятся значениями флагов по умолчанию: явно переданный флаг их перекрывает
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или file:*.db)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.BlobMaxSizeMB, "blob-max-mb", cfg.BlobMaxSizeMB, "максимальный размер загружаемого файла, МБ")
	flag.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "драйвер хранилища: local|memory|minio|gcs")
	flag.StringVar(&cfg.StorageRoot, "storage-root", cfg.StorageRoot, "корневой каталог для local драйвера")
	flag.DurationVar(&cfg.DestroyDelay, "destroy-delay", cfg.DestroyDelay, "пауза перед удалением записи")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "адрес redis для защиты от повторного удаления")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Bookshelf server (may be host:port or full URL)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file:bookshelf.db"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.BlobMaxSizeMB <= 0 {
		cfg.BlobMaxSizeMB = 50
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}
	switch cfg.StorageDriver {
	case StorageLocal, StorageMemory, StorageMinio, StorageGCS:
	default:
		cfg.StorageDriver = StorageLocal
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = filepath.Join("storage", "app", "public")
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "books"
	}
	// отрицательное значение означает «не задано»: по умолчанию пауза в 1 секунду
	if cfg.DestroyDelay < 0 {
		cfg.DestroyDelay = time.Second
	}
	if cfg.DestroyGuardTTL <= 0 {
		cfg.DestroyGuardTTL = 10 * time.Second
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// TokenFile пустой — клиент хранит токен в пользовательском каталоге конфигурации
	cfg.TokenFile = os.ExpandEnv(cfg.TokenFile)

	return cfg
}

// Admins разбирает ADMIN_USER_IDS в список идентификаторов, некорректные значения пропускаются.
func (c *Config) Admins() []int64 {
	var ids []int64
	for _, part := range strings.Split(c.AdminUserIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// LoginPath — адрес страницы входа; пустое или некорректное значение заменяется на /login.
func (c *Config) LoginPath() string {
	if !strings.HasPrefix(c.LoginURL, "/") {
		return "/login"
	}
	return c.LoginURL
}

// BlobMaxBytes — лимит размера загружаемого файла в байтах.
func (c *Config) BlobMaxBytes() int64 {
	if c.BlobMaxSizeMB <= 0 {
		return 50 << 20
	}
	return int64(c.BlobMaxSizeMB) << 20
}
