package toolbar

import (
	"github.com/pkg/errors"

	"github.com/diamondburned/embedkit/kits/popup"
)

// ErrUnknownOption is returned by ApplyFormat for a value that the format's
// picker does not offer.
var ErrUnknownOption = errors.New("unknown picker option")

// Picker formats.
const (
	FormatAlign      = "align"
	FormatColor      = "color"
	FormatBackground = "background"
	FormatFont       = "font"
	FormatHeader     = "header"
	FormatSize       = "size"
)

// Picker values. An empty value means no formatting.
var (
	Aligns  = []string{"", "center", "right", "justify"}
	Fonts   = []string{"", "serif", "monospace"}
	Headers = []string{"1", "2", "3", ""}
	Sizes   = []string{"small", "", "large", "huge"}

	Colors = []string{
		"#000000", "#e60000", "#ff9900", "#ffff00", "#008a00", "#0066cc", "#9933ff",
		"#ffffff", "#facccc", "#ffebcc", "#ffffcc", "#cce8cc", "#cce0f5", "#ebd6ff",
		"#bbbbbb", "#f06666", "#ffc266", "#ffff66", "#66b966", "#66a3e0", "#c285ff",
		"#888888", "#a10000", "#b26b00", "#b2b200", "#006100", "#0047b2", "#6b24b2",
		"#444444", "#5c0000", "#663d00", "#666600", "#003700", "#002966", "#3d1466",
	}
)

// Option is one entry of a picker.
type Option struct {
	// Label is the displayed value. For colors it is the color itself.
	Label string
	// Value is the value applied when the option is chosen. The selected
	// default option applies no formatting, so its value is empty.
	Value string
	// Selected marks the default option.
	Selected bool
}

// Options returns the options of the picker for the given format.
func Options(format string) ([]Option, error) {
	switch format {
	case FormatAlign:
		return fill(Aligns, ""), nil
	case FormatColor:
		return fill(Colors, "#000000"), nil
	case FormatBackground:
		return fill(Colors, "#ffffff"), nil
	case FormatFont:
		return fill(Fonts, ""), nil
	case FormatHeader:
		return fill(Headers, ""), nil
	case FormatSize:
		return fill(Sizes, ""), nil
	default:
		return nil, errors.Errorf("no picker for format %q", format)
	}
}

func fill(values []string, defaultValue string) []Option {
	opts := make([]Option, len(values))
	for i, value := range values {
		if value == defaultValue {
			opts[i] = Option{Label: value, Selected: true}
		} else {
			opts[i] = Option{Label: value, Value: value}
		}
	}
	return opts
}

// ApplyFormat applies a picker value to the current selection of host.
func ApplyFormat(host popup.Host, format, value string) error {
	opts, err := Options(format)
	if err != nil {
		return err
	}

	if !hasValue(opts, value) {
		return errors.Wrapf(ErrUnknownOption, "%s=%q", format, value)
	}

	r, ok := host.Selection(true)
	if !ok {
		return nil
	}

	host.FormatRange(r, format, value, popup.SourceUser)
	return nil
}

func hasValue(opts []Option, value string) bool {
	for _, opt := range opts {
		if opt.Value == value {
			return true
		}
	}
	return false
}
