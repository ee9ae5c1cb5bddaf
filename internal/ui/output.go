// Package ui provides colored terminal output helpers for the CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

// center pads text on the left so it sits centered within width.
// Text wider than width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// Header prints a centered section header between cyan rules.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	color.Cyan(line)
	color.Cyan(center(text, headerWidth))
	color.Cyan(line)
}

// Step prints a numbered progress step.
func Step(current, total int, text string) {
	color.Blue("[%d/%d] %s", current, total, text)
}

// Success prints a green checkmark line.
func Success(text string) {
	color.Green("✓ %s", text)
}

// Info prints a neutral informational line.
func Info(text string) {
	fmt.Println("  " + text)
}

// Warning prints a yellow warning line.
func Warning(text string) {
	color.Yellow("⚠ %s", text)
}

// Error prints a red error line.
func Error(text string) {
	color.Red("✗ %s", text)
}

// BlueText prints plain blue text.
func BlueText(text string) {
	color.Blue(text)
}

// YellowText prints plain yellow text.
func YellowText(text string) {
	color.Yellow(text)
}
