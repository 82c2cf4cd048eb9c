// file: internals/configs/config.go
package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"formationhub_backend/internals/features/sessions/engine"
)

var (
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailRelay    string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using system ENV")
		}
	}

	SMTPHost = GetEnv("SMTP_HOST")
	SMTPPort = GetEnv("SMTP_PORT", "587")
	SMTPUser = GetEnv("SMTP_USER")
	SMTPPassword = GetEnv("SMTP_PASSWORD")
	MailFrom = GetEnv("MAIL_FROM", "formation@formationhub.fr")
	MailRelay = GetEnv("MAIL_RELAY", "convocations@formationhub.fr")

	if SMTPHost == "" {
		log.Println("SMTP_HOST not set, convocation mails will be logged only")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(GetEnv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// EngineConfig builds the engine configuration from env, falling back to the
// documented defaults (lockout 3x / 30 min, session 4..10 participants).
func EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.LockoutThreshold = getEnvInt("LOCKOUT_THRESHOLD", cfg.LockoutThreshold)
	if v, err := strconv.Atoi(GetEnv("LOCKOUT_MINUTES")); err == nil && v > 0 {
		cfg.LockoutDuration = time.Duration(v) * time.Minute
	}
	cfg.CodeMaxRetries = getEnvInt("ACCESS_CODE_MAX_RETRIES", cfg.CodeMaxRetries)
	cfg.DefaultMinParticipants = getEnvInt("SESSION_MIN_PARTICIPANTS", cfg.DefaultMinParticipants)
	cfg.DefaultMaxParticipants = getEnvInt("SESSION_MAX_PARTICIPANTS", cfg.DefaultMaxParticipants)
	if v := GetEnv("PORTAL_BASE_URL"); v != "" {
		cfg.PortalBaseURL = v
	}
	return cfg
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
