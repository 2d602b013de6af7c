package initializer

import (
	"io"
	"log/slog"

	"github.com/amirasaad/atm/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

// levelBadges are the glyphs printed in place of the level name.
var levelBadges = map[log.Level]struct {
	glyph string
	color lipgloss.AdaptiveColor
}{
	log.DebugLevel: {"🐛", debugColor},
	log.InfoLevel:  {"ℹ️", infoColor},
	log.WarnLevel:  {"⚠️", warnColor},
	log.ErrorLevel: {"❌", errorColor},
}

// keyColors colours well-known attribute keys; values are printed bold.
var keyColors = map[string]lipgloss.AdaptiveColor{
	"error":    errorColor,
	"info":     infoColor,
	"warn":     warnColor,
	"debug":    debugColor,
	"prefix":   debugColor,
	"caller":   debugColor,
	"time":     debugColor,
	"username": infoColor,
	"session":  debugColor,
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, badge := range levelBadges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(badge.glyph).
			Bold(true).
			Padding(0, 1).
			Foreground(badge.color)
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

// SetupLogger builds the process logger on top of charmbracelet/log, writes
// it to w and installs it as the slog default. A nil cfg uses the config
// defaults.
func SetupLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05", Prefix: "[atm]"}
	}
	formatter := log.TextFormatter
	if cfg.Format == "json" {
		formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(logStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
