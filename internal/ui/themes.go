package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LogPanel/internal/logs"
)

// Theme represents a color theme for the panel
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Level colors
	Debug lipgloss.AdaptiveColor
	Info  lipgloss.AdaptiveColor
	Warn  lipgloss.AdaptiveColor
	Error lipgloss.AdaptiveColor
	Fatal lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Label     lipgloss.AdaptiveColor
}

func buildTheme(name string, primary, secondary, accent, debug, info, warn, errorColor, fatal, border, muted, highlight, label [2]string) Theme {
	c := func(pair [2]string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: pair[0], Dark: pair[1]}
	}
	return Theme{
		Name:      name,
		Primary:   c(primary),
		Secondary: c(secondary),
		Accent:    c(accent),
		Debug:     c(debug),
		Info:      c(info),
		Warn:      c(warn),
		Error:     c(errorColor),
		Fatal:     c(fatal),
		Border:    c(border),
		Muted:     c(muted),
		Highlight: c(highlight),
		Label:     c(label),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#1E40AF", "#3B82F6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#7C3AED", "#A855F7"},
		[2]string{"#6B7280", "#9CA3AF"}, [2]string{"#0891B2", "#06B6D4"}, [2]string{"#D97706", "#F59E0B"},
		[2]string{"#DC2626", "#EF4444"}, [2]string{"#991B1B", "#F87171"}, [2]string{"#D1D5DB", "#374151"},
		[2]string{"#6B7280", "#9CA3AF"}, [2]string{"#FEF3C7", "#854D0E"}, [2]string{"#059669", "#10B981"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#000080", "#8080FF"},
		[2]string{"#666666", "#BBBBBB"}, [2]string{"#0066CC", "#4499FF"}, [2]string{"#CC6600", "#FFAA00"},
		[2]string{"#CC0000", "#FF4444"}, [2]string{"#800000", "#FF8080"}, [2]string{"#000000", "#FFFFFF"},
		[2]string{"#666666", "#BBBBBB"}, [2]string{"#FFFF00", "#444444"}, [2]string{"#006600", "#00FF00"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"}, [2]string{"#4A5568", "#CBD5E0"},
		[2]string{"#A0AEC0", "#718096"}, [2]string{"#2B6CB0", "#63B3ED"}, [2]string{"#C05621", "#F6AD55"},
		[2]string{"#C53030", "#FC8181"}, [2]string{"#9B2C2C", "#FEB2B2"}, [2]string{"#E2E8F0", "#2D3748"},
		[2]string{"#A0AEC0", "#718096"}, [2]string{"#F7FAFC", "#2D3748"}, [2]string{"#2F855A", "#68D391"})
)

var (
	currentTheme  = DefaultTheme
	colorDisabled bool
)

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "", "default":
		currentTheme = DefaultTheme
	case "high-contrast":
		currentTheme = HighContrastTheme
	case "minimal":
		currentTheme = MinimalTheme
	default:
		return false
	}
	return true
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// SetColorDisabled turns styling off for every style built afterwards
func SetColorDisabled(disabled bool) {
	colorDisabled = disabled
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled || os.Getenv("NO_COLOR") != ""
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Body      lipgloss.Style
	Accent    lipgloss.Style
	Highlight lipgloss.Style
	Label     lipgloss.Style
	Badge     lipgloss.Style
	Panel     lipgloss.Style
	Help      lipgloss.Style

	levels map[logs.LogLevel]lipgloss.Style
}

// Level returns the style for a log level
func (s *Styles) Level(level logs.LogLevel) lipgloss.Style {
	if style, ok := s.levels[level]; ok {
		return style
	}
	return s.Body
}

// GetStyles builds styles from the current theme
func GetStyles() *Styles {
	if IsColorDisabled() {
		plain := lipgloss.NewStyle()
		return &Styles{
			Theme:     currentTheme,
			Title:     plain,
			Header:    plain,
			Muted:     plain,
			Body:      plain,
			Accent:    plain,
			Highlight: plain,
			Label:     plain,
			Badge:     plain,
			Panel:     plain,
			Help:      plain,
			levels:    map[logs.LogLevel]lipgloss.Style{},
		}
	}

	theme := currentTheme
	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Body: lipgloss.NewStyle(),

		Accent: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Highlight: lipgloss.NewStyle().
			Background(theme.Highlight).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(theme.Label),

		Badge: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(theme.Border),

		Help: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		levels: map[logs.LogLevel]lipgloss.Style{
			logs.LevelDebug: lipgloss.NewStyle().Foreground(theme.Debug),
			logs.LevelInfo:  lipgloss.NewStyle().Foreground(theme.Info),
			logs.LevelWarn:  lipgloss.NewStyle().Foreground(theme.Warn).Bold(true),
			logs.LevelError: lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
			logs.LevelFatal: lipgloss.NewStyle().Foreground(theme.Fatal).Bold(true).Underline(true),
		},
	}
}
