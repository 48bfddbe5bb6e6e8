package log

import "os"

const resetColor = "\033[0m"

var levelColors = map[LogLevel]string{
	Debug: "\033[34m",
	Info:  "\033[32m",
	Warn:  "\033[33m",
	Error: "\033[31m",
	Fatal: "\033[35m",
}

func (l LogLevel) color() string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return resetColor
}

// colorDisabled follows the NO_COLOR convention (https://no-color.org).
func colorDisabled() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}
