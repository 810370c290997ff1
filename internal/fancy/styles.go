package fancy

import "github.com/charmbracelet/lipgloss"

var (
	RootStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray)

	SchemeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ModeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	EndpointStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	URIStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ExtensionStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// SchemeText styles a URL scheme.
func SchemeText(text string) string {
	return SchemeStyle.Render(text)
}

// ModeText styles a deployment mode.
func ModeText(text string) string {
	return ModeStyle.Render(text)
}

// EndpointText styles an address or origin.
func EndpointText(text string) string {
	return EndpointStyle.Render(text)
}

// URIText styles a URI.
func URIText(text string) string {
	return URIStyle.Render(text)
}

// ExtensionText styles an extension identifier.
func ExtensionText(text string) string {
	return ExtensionStyle.Render(text)
}

// ErrorText styles an error message.
func ErrorText(text string) string {
	return ErrorStyle.Render(text)
}
