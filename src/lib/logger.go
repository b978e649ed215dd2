package lib

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// InitLogger routes the global zerolog logger and gin's writers to stdout and
// rotating files under logDir.
func InitLogger(logDir string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logDir = os.TempDir()
	}
	serverLogs := &lumberjack.Logger{
		Filename:   path.Join(logDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}
	apiLogs := &lumberjack.Logger{
		Filename:   path.Join(logDir, "api.log"),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}

	var console io.Writer = os.Stdout
	if pretty {
		gin.ForceConsoleColor()
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	gin.DefaultWriter = io.MultiWriter(apiLogs, os.Stdout)
	gin.DefaultErrorWriter = io.MultiWriter(serverLogs, os.Stderr)

	logger := zerolog.New(zerolog.MultiLevelWriter(console, serverLogs)).
		With().
		Timestamp().
		Logger()
	zlog.Logger = logger
	return logger
}

// Component derives a child logger tagged with the component name.
func Component(base zerolog.Logger, name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}
