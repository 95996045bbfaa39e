package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const projectName = "cliptile"

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the shared logger every package writes through.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetOutput(os.Stderr)
		projectLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		projectLogger.SetLevel(logrus.InfoLevel)
	})
	return projectLogger.WithField("name", projectName)
}

// SetLevel parses a logrus level name ("debug", "info", ...) and applies it to the project logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	GetProjectLogger().Logger.SetLevel(lvl)
	return nil
}
