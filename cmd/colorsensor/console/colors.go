package console

import "github.com/fatih/color"

// Available ANSI colors
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Channel colours a channel name with its own hue.
func Channel(name string) string {
	switch name {
	case "red":
		return Red(name)
	case "green":
		return Green(name)
	case "blue":
		return Blue(name)
	}
	return White(name)
}
