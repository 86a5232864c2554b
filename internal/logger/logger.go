package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var log = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		DisableQuote:    true,
	})
	return l
}

// Setup configures the level and optional rotating log file.
// An empty file keeps console-only output.
func Setup(level, file string) {
	l := newLogger(os.Stdout)
	if lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		l.SetLevel(lvl)
	}
	if file != "" {
		l.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}
	log = l
}

func entry(tag string) *logrus.Entry {
	return log.WithField("component", tag)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintln(log.Out, "")
	fmt.Fprintln(log.Out, "  OSRS Flip Finder "+version)
	fmt.Fprintln(log.Out, "  prices: prices.runescape.wiki")
	fmt.Fprintln(log.Out, "")
}

// Section prints a visual separator for a group of log lines.
func Section(title string) {
	fmt.Fprintf(log.Out, "── %s ──\n", title)
}

func Info(tag, msg string) {
	entry(tag).Info(msg)
}

func Success(tag, msg string) {
	entry(tag).WithField("ok", true).Info(msg)
}

func Warn(tag, msg string) {
	entry(tag).Warn(msg)
}

func Error(tag, msg string) {
	entry(tag).Error(msg)
}

// Stats logs a single key/value metric.
func Stats(key string, value interface{}) {
	log.WithFields(logrus.Fields{"component": "STATS", "key": key, "value": value}).Info(key)
}

// Server announces the listening address.
func Server(addr string) {
	entry("Server").Infof("Listening on http://%s", addr)
}
