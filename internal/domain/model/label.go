package model

const (
	// DefaultLabelName is the label the bot ensures exists when no explicit
	// label configuration is given.
	DefaultLabelName = "todo :spiral_notepad:"
	// DefaultLabelColor is the hex color (without '#') of the default label.
	DefaultLabelColor = "00B0D8"
	// DefaultLabelDescription is shown next to the default label in the GitHub UI.
	DefaultLabelDescription = "Issue opened from a TODO comment"
)

// Label is a repository issue label.
type Label struct {
	Name        string
	Color       string
	Description string
}

// DefaultLabel returns the descriptor of the bot's default label.
func DefaultLabel() Label {
	return Label{Name: DefaultLabelName, Color: DefaultLabelColor, Description: DefaultLabelDescription}
}

// LabelConfig is the resolved label input of the run: disabled, the default
// label, or an explicit list of names.
type LabelConfig struct {
	Mode  LabelMode
	Names []string // Only meaningful for LabelModeExplicit.
}
