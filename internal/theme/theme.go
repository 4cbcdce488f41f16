package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a set of adaptive color pairs (dark terminal value, light
// terminal value).
type Palette struct {
	Blue, Green, Yellow, Red, Orange, Magenta lipgloss.AdaptiveColor
	Gray, White, Subtle, Border               lipgloss.AdaptiveColor
}

// DefaultTheme is used when display.theme is empty.
const DefaultTheme = "default"

var palettes = map[string]Palette{
	DefaultTheme: {
		Blue:    lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"},
		Green:   lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"},
		Yellow:  lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"},
		Red:     lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"},
		Orange:  lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"},
		Magenta: lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"},
		Gray:    lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"},
		White:   lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"},
		Subtle:  lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"},
		Border:  lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"},
	},
	// mono keeps contrast for terminals where the accent colors clash.
	"mono": {
		Blue:    lipgloss.AdaptiveColor{Dark: "#E9ECEF", Light: "#212529"},
		Green:   lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#000000"},
		Yellow:  lipgloss.AdaptiveColor{Dark: "#CED4DA", Light: "#343A40"},
		Red:     lipgloss.AdaptiveColor{Dark: "#FFFFFF", Light: "#000000"},
		Orange:  lipgloss.AdaptiveColor{Dark: "#DEE2E6", Light: "#343A40"},
		Magenta: lipgloss.AdaptiveColor{Dark: "#DEE2E6", Light: "#343A40"},
		Gray:    lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#6C757D"},
		White:   lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"},
		Subtle:  lipgloss.AdaptiveColor{Dark: "#343A40", Light: "#DEE2E6"},
		Border:  lipgloss.AdaptiveColor{Dark: "#6C757D", Light: "#ADB5BD"},
	},
}

// Current palette colors. Apply replaces them.
var (
	ColorBlue    lipgloss.AdaptiveColor
	ColorGreen   lipgloss.AdaptiveColor
	ColorYellow  lipgloss.AdaptiveColor
	ColorRed     lipgloss.AdaptiveColor
	ColorOrange  lipgloss.AdaptiveColor
	ColorMagenta lipgloss.AdaptiveColor
	ColorGray    lipgloss.AdaptiveColor
	ColorWhite   lipgloss.AdaptiveColor
	ColorSubtle  lipgloss.AdaptiveColor
	ColorBorder  lipgloss.AdaptiveColor
)

var (
	// HeaderStyle is used for top-level section headers and the application title.
	HeaderStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// DetailPanelStyle wraps panels such as help and the signed URL pane.
	DetailPanelStyle lipgloss.Style

	// TitleStyle is the heading at the top of each view.
	TitleStyle lipgloss.Style

	// TabStyle renders an inactive tab label.
	TabStyle lipgloss.Style

	// ActiveTabStyle renders the selected tab label.
	ActiveTabStyle lipgloss.Style

	// ListItemStyle is the base style for items in a list.
	ListItemStyle lipgloss.Style

	// SelectedItemStyle highlights the currently focused list item.
	SelectedItemStyle lipgloss.Style

	// HelpStyle is used for keyboard shortcut hints and help text.
	HelpStyle lipgloss.Style

	// DimmedStyle is used for empty states and secondary text.
	DimmedStyle lipgloss.Style

	// BorderStyle provides a standard rounded border for panels.
	BorderStyle lipgloss.Style
)

func init() {
	use(palettes[DefaultTheme])
}

// Names lists the available themes.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply switches every color and style to the named theme. An empty name
// selects the default. Call it before the program starts.
func Apply(name string) error {
	if name == "" {
		name = DefaultTheme
	}
	p, ok := palettes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	use(p)
	return nil
}

func use(p Palette) {
	ColorBlue, ColorGreen, ColorYellow = p.Blue, p.Green, p.Yellow
	ColorRed, ColorOrange, ColorMagenta = p.Red, p.Orange, p.Magenta
	ColorGray, ColorWhite = p.Gray, p.White
	ColorSubtle, ColorBorder = p.Subtle, p.Border

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		Background(ColorBlue).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorWhite).
		Background(ColorSubtle).
		Padding(0, 1)

	DetailPanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		MarginBottom(1)

	TabStyle = lipgloss.NewStyle().
		Foreground(ColorGray).
		Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBlue).
		Underline(true).
		Padding(0, 1)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(ColorBlue).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorBlue)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	DimmedStyle = lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)
}

// NotificationStyle returns a color-coded label style for a notification
// type.
func NotificationStyle(notificationType string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch notificationType {
	case "success", "file_uploaded", "email_sent":
		return base.Foreground(ColorGreen)
	case "warning":
		return base.Foreground(ColorOrange)
	case "error":
		return base.Foreground(ColorRed)
	case "message_received":
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorBlue)
	}
}

// ConnectionStyle returns the header style for a channel state label.
func ConnectionStyle(state string) lipgloss.Style {
	base := HeaderStyle

	switch state {
	case "connected":
		return base.Foreground(ColorGreen)
	case "connecting":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorRed)
	}
}

// ToastStyle returns the status bar style for a toast level.
func ToastStyle(level string) lipgloss.Style {
	base := StatusBarStyle.Bold(true)

	switch level {
	case "success":
		return base.Foreground(ColorGreen)
	case "warning":
		return base.Foreground(ColorYellow)
	case "error":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorBlue)
	}
}
