package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

type colorMode string

const (
	colorModeAuto colorMode = "auto"
	colorModeOn   colorMode = "on"
	colorModeOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorModeAuto, nil
	case "on":
		return colorModeOn, nil
	case "off":
		return colorModeOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// applyColorMode configures the global color state and reports whether
// colored output is active.
func applyColorMode(mode colorMode) bool {
	var enabled bool
	switch mode {
	case colorModeOn:
		enabled = true
	case colorModeOff:
		enabled = false
	default:
		enabled = isTerminal(os.Stdout)
	}
	color.NoColor = !enabled
	return enabled
}
