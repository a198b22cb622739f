package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageModeAuto     = "auto"
	StorageModeMemory   = "memory"
	StorageModeFile     = "file"
	StorageModeSQLite   = "sqlite"
	StorageModePostgres = "postgres"
	StorageModeS3       = "s3"
)

const (
	AIModeMock   = "mock"
	AIModeGemini = "gemini"
	AIModeOpenAI = "openai"
)

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

// DefaultStateSlotKey is the name of the slot that holds the whole app state.
const DefaultStateSlotKey = "nutri_app_state_v3"

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s prefix=%s access_key_id=%s secret_access_key=%s",
		NonEmptyOrDash(c.Endpoint),
		NonEmptyOrDash(c.Region),
		NonEmptyOrDash(c.Bucket),
		NonEmptyOrDash(c.Prefix),
		accessKeyStatus,
		secretKeyStatus,
	)
}

// NonEmptyOrDash renders an optional value for banners and diagnostics.
func NonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

// StorageConfig selects the backend for the state slot.
type StorageConfig struct {
	Mode     string // auto|memory|file|sqlite|postgres|s3
	SlotKey  string
	FilePath string
	SQLPath  string
	S3       S3Config
}

// GeminiConfig holds Vertex AI settings.
type GeminiConfig struct {
	ProjectID       string
	Location        string
	CredentialsFile string
	Model           string
}

// Config содержит конфигурацию приложения
type Config struct {
	Env       string // local | staging | prod
	Port      int
	LogLevel  string
	LogFormat string // json | console
	Location  *time.Location

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	Storage StorageConfig

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Uploads (base64 media for ingestion)
	UploadMaxMB int

	// History export
	ReportsMaxRangeDays int

	// Authentication
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// AI
	AIMode            string // mock | gemini | openai
	AIMaxOutputTokens int
	AITemperature     float64
	AITimeoutSeconds  int
	OpenAIAPIKey      string
	OpenAIModel       string
	Gemini            GeminiConfig

	// Recipes
	RecipesCount          int
	RecipesTimeoutSeconds int

	// Migrations
	RunMigrationsOnStartup bool

	// Warnings collected while loading; logged once the logger exists.
	Warnings []string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	// PORT (default: 8080)
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	// LOG_LEVEL (default: debug)
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "debug"
	}
	logFormat := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if logFormat == "" {
		logFormat = "console"
		if env != "local" {
			logFormat = "json"
		}
	}
	if logFormat != "json" && logFormat != "console" {
		warnf("unknown LOG_FORMAT=%q, fallback to json", logFormat)
		logFormat = "json"
	}

	// TIME_ZONE: date keys are computed in this location (default: process local time)
	location := time.Local
	if tz := strings.TrimSpace(os.Getenv("TIME_ZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			warnf("unknown TIME_ZONE=%q, fallback to local: %v", tz, err)
		} else {
			location = loc
		}
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- Migrations ----------
	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- Storage ----------
	storageMode := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_MODE")))
	if storageMode == "" {
		storageMode = StorageModeAuto
	}
	switch storageMode {
	case StorageModeAuto, StorageModeMemory, StorageModeFile, StorageModeSQLite, StorageModePostgres, StorageModeS3:
	default:
		warnf("unknown STORAGE_MODE=%q, fallback to %s", storageMode, StorageModeAuto)
		storageMode = StorageModeAuto
	}

	slotKey := strings.TrimSpace(os.Getenv("STATE_SLOT_KEY"))
	if slotKey == "" {
		slotKey = DefaultStateSlotKey
	}
	statePath := strings.TrimSpace(os.Getenv("STATE_FILE_PATH"))
	if statePath == "" {
		statePath = "data/nutri_state.json"
	}
	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "data/nutri.db"
	}

	s3Cfg := S3Config{
		Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:          strings.TrimSpace(os.Getenv("S3_REGION")),
		Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		Prefix:          strings.Trim(strings.TrimSpace(os.Getenv("S3_PREFIX")), "/"),
	}

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// UPLOAD_MAX_MB (default: 10)
	uploadMaxMB := envInt("UPLOAD_MAX_MB", 10)
	if uploadMaxMB <= 0 {
		uploadMaxMB = 10
	}

	// REPORTS_MAX_RANGE_DAYS (default: 366)
	reportsMaxRangeDays := envInt("REPORTS_MAX_RANGE_DAYS", 366)
	if reportsMaxRangeDays <= 0 {
		reportsMaxRangeDays = 366
	}

	// AUTH_MODE (default: none)
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = AuthModeNone
	}
	if authMode != AuthModeNone && authMode != AuthModeDev {
		warnf("unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = AuthModeNone
	}
	authRequired := authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	// JWT_SECRET
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		warnf("JWT_SECRET is set to 'change_me' in non-local environment")
	}

	// JWT_ISSUER (default: "nutri-hub")
	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "nutri-hub"
	}

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = AIModeMock
	}
	if aiMode != AIModeMock && aiMode != AIModeGemini && aiMode != AIModeOpenAI {
		warnf("unknown AI_MODE=%q, fallback to mock", aiMode)
		aiMode = AIModeMock
	}

	aiMaxOutputTokens := envInt("AI_MAX_OUTPUT_TOKENS", 2048)
	if aiMaxOutputTokens <= 0 {
		aiMaxOutputTokens = 2048
	}

	aiTemperature := envFloat("AI_TEMPERATURE", 0.3)
	if aiTemperature < 0 {
		aiTemperature = 0
	}
	if aiTemperature > 2 {
		aiTemperature = 2
	}

	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 30)
	if aiTimeoutSeconds <= 0 {
		aiTimeoutSeconds = 30
	}

	openAIAPIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	openAIModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if openAIModel == "" {
		openAIModel = "gpt-4.1-mini"
	}

	gemini := GeminiConfig{
		ProjectID:       strings.TrimSpace(os.Getenv("GEMINI_PROJECT_ID")),
		Location:        strings.TrimSpace(os.Getenv("GEMINI_LOCATION")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GEMINI_CREDENTIALS_FILE")),
		Model:           strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
	}
	if gemini.Location == "" {
		gemini.Location = "us-central1"
	}
	if gemini.Model == "" {
		gemini.Model = "gemini-2.0-flash"
	}

	// RECIPES_COUNT (default: 4)
	recipesCount := envInt("RECIPES_COUNT", 4)
	if recipesCount <= 0 || recipesCount > 12 {
		recipesCount = 4
	}
	recipesTimeout := envInt("RECIPES_TIMEOUT_SECONDS", 60)
	if recipesTimeout <= 0 {
		recipesTimeout = 60
	}

	return &Config{
		Env:       env,
		Port:      port,
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Location:  location,

		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		Storage: StorageConfig{
			Mode:     storageMode,
			SlotKey:  slotKey,
			FilePath: statePath,
			SQLPath:  sqlitePath,
			S3:       s3Cfg,
		},

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		UploadMaxMB:         uploadMaxMB,
		ReportsMaxRangeDays: reportsMaxRangeDays,

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		AIMode:            aiMode,
		AIMaxOutputTokens: aiMaxOutputTokens,
		AITemperature:     aiTemperature,
		AITimeoutSeconds:  aiTimeoutSeconds,
		OpenAIAPIKey:      openAIAPIKey,
		OpenAIModel:       openAIModel,
		Gemini:            gemini,

		RecipesCount:          recipesCount,
		RecipesTimeoutSeconds: recipesTimeout,

		RunMigrationsOnStartup: runMigrationsOnStartup,

		Warnings: warnings,
	}
}

// Validate reports configuration that cannot start a server.
func (c *Config) Validate() error {
	var errs []error
	switch c.AIMode {
	case AIModeOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_MODE=openai"))
		}
	case AIModeGemini:
		if c.Gemini.ProjectID == "" {
			errs = append(errs, errors.New("GEMINI_PROJECT_ID is required when AI_MODE=gemini"))
		}
	}
	switch c.Storage.Mode {
	case StorageModePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_MODE=postgres"))
		}
	case StorageModeS3:
		if missing := c.Storage.S3.MissingRequired(); len(missing) > 0 {
			errs = append(errs, fmt.Errorf("STORAGE_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", ")))
		}
	}
	if c.Env == "prod" && c.AuthMode != AuthModeNone && c.JWTSecret == "change_me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}
	return errors.Join(errs...)
}

// AITimeout returns the per-call inference timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// UploadMaxBytes returns the decoded media size limit.
func (c *Config) UploadMaxBytes() int {
	return c.UploadMaxMB << 20
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
