package style

import "github.com/charmbracelet/lipgloss"

// Truecolor accents for boxed notices.
var (
	Text     = lipgloss.Color("#cdd6f4")
	Red      = lipgloss.Color("#f38ba8")
	Sapphire = lipgloss.Color("#74c7ec")
)
