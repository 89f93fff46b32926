package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const confirmPhrase = "I AGREE"

// ConfirmDangerousOperation displays a warning box and prompts the user to
// type "I AGREE" before a disruptive operation proceeds. Returns true only
// when the user typed the exact phrase.
func ConfirmDangerousOperation(title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(WarningTitleStyle.Render("   ⚠  WARNING  -  " + title))
	b.WriteString("\n\n")

	bullet := lipgloss.NewStyle().Foreground(TextColor)
	for _, w := range warnings {
		b.WriteString(bullet.Render("   • " + w))
		b.WriteString("\n")
	}

	if disclaimer != "" {
		fine := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		b.WriteString("\n")
		b.WriteString(fine.Render(disclaimer))
		b.WriteString("\n")
	}

	fmt.Println(WarningBoxStyle(width).Render(b.String()))
	fmt.Println()

	promptStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	fmt.Print(promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", confirmPhrase)))

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	fmt.Println()
	if err != nil || strings.TrimSpace(line) != confirmPhrase {
		fmt.Println(lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
		fmt.Println()
		return false
	}
	return true
}

// ResetConfirmation is the pre-configured confirmation for target resets.
func ResetConfirmation() bool {
	warnings := []string{
		"This operation will reset and halt the attached target",
		"Any state the firmware holds in RAM will be lost",
		"Ensure the probe has a stable SWD/JTAG connection",
		"Other debuggers attached to the same target will be disconnected",
	}
	disclaimer := "DISCLAIMER: This software is provided as-is, without warranty of any kind. " +
		"The authors accept no responsibility for any damage to your hardware. " +
		"By proceeding, you acknowledge that you understand the risks involved " +
		"in resetting a live target."
	return ConfirmDangerousOperation("TARGET RESET", warnings, disclaimer)
}
