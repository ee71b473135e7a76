package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

const stepBarWidth = 32

// StepProgress renders "Step 3 of 11" followed by a gradient bar.
// The bar is drawn with ViewAs so it can be printed without running a program.
func StepProgress(current, total int) string {
	if total <= 0 {
		return ""
	}
	current = max(0, min(current, total))

	bar := progress.New(
		progress.WithScaledGradient(ColorViolet600, ColorViolet300),
		progress.WithWidth(stepBarWidth),
		progress.WithoutPercentage(),
	)
	label := DimStyle.Render(fmt.Sprintf("Step %d of %d", current, total))
	return label + "  " + bar.ViewAs(float64(current)/float64(total))
}
