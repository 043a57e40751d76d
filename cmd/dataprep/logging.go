package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logFormatter struct{}

func (f *logFormatter) Format(entry *log.Entry) ([]byte, error) {
	var fields strings.Builder
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&fields, " %s=%v", k, entry.Data[k])
	}
	// Example log line:
	// 2024-03-23 12:16:42 INFO imported 3 rows, 4 columns session=5f0c...
	msg := fmt.Sprintf("%s %s %s%s\n",
		entry.Time.Format("2006-01-02 15:04:05"), strings.ToUpper(entry.Level.String()),
		entry.Message, fields.String())
	return []byte(msg), nil
}

// InitLogging sends log messages to <logDir>/dataprep-<cmd>.log, rotated by
// size. Without a log directory only warnings and errors reach stderr, unless
// verbose is set.
func InitLogging(logDir string, verbose bool, cmdName string) {
	log.SetFormatter(&logFormatter{})
	if logDir == "" {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.WarnLevel)
		if verbose {
			log.SetLevel(log.InfoLevel)
		}
		return
	}

	logRotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fmt.Sprintf("dataprep-%s.log", cmdName)),
		MaxSize:    100, // MB before rotation
		MaxBackups: 5,
	}
	log.SetOutput(logRotator)
	log.SetLevel(log.InfoLevel)
	log.Info("Logging initialised.")
	log.Infof("Args: %v", os.Args)
}

// ErrExit prints the message in red, logs it and exits with status 1.
func ErrExit(format string, args ...any) {
	format = strings.ReplaceAll(format, "%w", "%v")
	if !logsToStderr() {
		log.Errorf(format, args...)
	}
	color.Red(format, args...)
	os.Exit(1)
}

// PrintAndLog prints the message to stdout and logs it.
func PrintAndLog(format string, args ...any) {
	log.Infof(format, args...)
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Printf(format, args...)
}

// Warn prints the message in yellow and logs it as a warning.
func Warn(format string, args ...any) {
	if !logsToStderr() {
		log.Warnf(format, args...)
	}
	color.Yellow(format, args...)
}

func logsToStderr() bool {
	return log.StandardLogger().Out == os.Stderr
}

func sortedKeys(data log.Fields) []string {
	keys := lo.Keys(data)
	sort.Strings(keys)
	return keys
}
