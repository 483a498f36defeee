package terminal

import (
	"fmt"
	"strings"
)

// Color is an ANSI SGR foreground color code.
type Color int

const (
	Default Color = 39

	Black   Color = 30
	Red     Color = 31
	Green   Color = 32
	Yellow  Color = 33
	Blue    Color = 34
	Magenta Color = 35
	Cyan    Color = 36
	White   Color = 37

	BrightBlack   Color = 90
	BrightRed     Color = 91
	BrightGreen   Color = 92
	BrightYellow  Color = 93
	BrightBlue    Color = 94
	BrightMagenta Color = 95
	BrightCyan    Color = 96
	BrightWhite   Color = 97
)

var colorNames = map[string]Color{
	"default":        Default,
	"black":          Black,
	"red":            Red,
	"green":          Green,
	"yellow":         Yellow,
	"blue":           Blue,
	"magenta":        Magenta,
	"cyan":           Cyan,
	"white":          White,
	"bright-black":   BrightBlack,
	"gray":           BrightBlack,
	"bright-red":     BrightRed,
	"bright-green":   BrightGreen,
	"bright-yellow":  BrightYellow,
	"bright-blue":    BrightBlue,
	"bright-magenta": BrightMagenta,
	"bright-cyan":    BrightCyan,
	"bright-white":   BrightWhite,
}

// ParseColor resolves a color name such as "green" or "bright-cyan".
func ParseColor(name string) (Color, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if c, ok := colorNames[key]; ok {
		return c, nil
	}
	return Default, fmt.Errorf("unknown color %q", name)
}

func (c Color) sequence() string {
	return fmt.Sprintf("\033[%dm", int(c))
}
