package connect

import (
	"strings"

	"github.com/botdash/botdash-cli/internal/ui"
	"github.com/botdash/botdash-cli/internal/wizard"
)

func render(reg *wizard.Registry, step wizard.Step, state wizard.State) {
	ui.Line()
	ui.Print(ui.StepProgress(step.Index, reg.Total()))
	ui.Title(step.Title)
	if step.Body != "" {
		ui.Box(step.Body)
	}

	if step.ShowWebhook {
		renderWebhook(state.WebhookURL)
	}

	if state.LastError != "" {
		renderError(reg, state)
	}
}

func renderWebhook(url string) {
	if url == "" {
		// resumed sessions only know the integration id
		ui.Warning("The handler URL from the previous session is not stored locally. Keep the one already entered in Bitrix24, or go back to the credentials step to generate a new one.")
		return
	}
	ui.Print("Handler URL:")
	ui.URL("  " + url)
	if ui.CopyToClipboard(url) {
		ui.Dim("Copied to clipboard")
	}
}

func renderError(reg *wizard.Registry, state wizard.State) {
	switch state.LastErrorKind {
	case wizard.KindValidation:
		ui.Warning(state.LastError)
		if missing := wizard.MissingFields(reg, state); len(missing) > 0 {
			ui.Dim("Missing: " + fieldLabels(missing))
		}
	case wizard.KindTimeout:
		ui.Error(state.LastError)
		ui.Dim("Try again, or allow more time with --timeout")
	case wizard.KindTransport:
		ui.Error(state.LastError)
		ui.Dim("Check your connection and try again")
	default:
		ui.Error(state.LastError)
	}
}

func fieldLabels(names []wizard.FieldName) string {
	labels := make([]string, len(names))
	for i, n := range names {
		meta, _ := wizard.Spec(n)
		labels[i] = meta.Label
	}
	return strings.Join(labels, ", ")
}
