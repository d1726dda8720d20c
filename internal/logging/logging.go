package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zhouzirui/funds-assistant/backend/internal/config"
)

// Setup routes the standard logger to stdout and, when a file is configured, to a
// size-rotated log file. The returned closer flushes the file on shutdown.
func Setup(cfg config.LogConfig) io.Closer {
	log.SetFlags(log.LstdFlags | log.LUTC)

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator
}

// Infof writes an INFO line tagged with the component name.
func Infof(component, format string, args ...any) {
	log.Printf("INFO [%s] %s", component, fmt.Sprintf(format, args...))
}

// Errorf writes an ERROR line tagged with the component name.
func Errorf(component, format string, args ...any) {
	log.Printf("ERROR [%s] %s", component, fmt.Sprintf(format, args...))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
