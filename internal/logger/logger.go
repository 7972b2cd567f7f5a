package logger

import (
	"context"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb        = "db"
	ErrorTypeAiApi     = "ai_api"
	ErrorTypeSearchApi = "search_api"
	ErrorTypeTgApi     = "tg_api"
	ErrorTypeExtract   = "extract"
	ErrorTypeFeed      = "feed"
)

var logFile *os.File

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	var err error
	logFile, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)

	customFormatter := &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	}
	log.SetFormatter(customFormatter)
	addPrometheusHook()

	level := parseLevel(cfg.LogLevel)
	log.SetLevel(level)

	if cfg.LokiURL == "" {
		return
	}

	lokiCfg := loki.Config{
		Url:      cfg.LokiURL,
		Username: cfg.LokiUser,
		Password: cfg.LokiPassword,
		Labels:   map[string]string{"app": cfg.AppName},
	}
	if err = addLokiHook(ctx, lokiCfg, level); err != nil {
		log.Errorf("Failed to enable Loki logging: %v", err)
	}
}

func parseLevel(level config.LogLevel) log.Level {
	switch level {
	case config.LevelInfo:
		return log.InfoLevel
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Cleanup() {
	if pusher != nil {
		pusher.Stop()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}
