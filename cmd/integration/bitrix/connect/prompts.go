package connect

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/botdash/botdash-cli/internal/client/botclient"
	"github.com/botdash/botdash-cli/internal/ui"
	"github.com/botdash/botdash-cli/internal/wizard"
)

type navigation int

const (
	navNext navigation = iota
	navBack
	navCancel
)

// prompter is the interactive side of a connect session.
type prompter interface {
	SelectBot(bots []botclient.Bot) (botclient.Bot, error)
	ConfirmResume() (bool, error)
	// FillFields returns the values of step.Inputs, starting from current.
	FillFields(step wizard.Step, current map[wizard.FieldName]string) (map[wizard.FieldName]string, error)
	// Navigate offers next (labelled next), back and cancel.
	Navigate(step wizard.Step, next string) (navigation, error)
}

type terminalPrompter struct{}

func (terminalPrompter) SelectBot(bots []botclient.Bot) (botclient.Bot, error) {
	options := make([]ui.SelectOption[int], len(bots))
	for i, b := range bots {
		options[i] = ui.SelectOption[int]{Label: b.DisplayName + " (" + b.ID + ")", Value: i}
	}
	i, err := ui.Select("Which bot should be connected to Bitrix24?", options)
	if err != nil {
		return botclient.Bot{}, err
	}
	return bots[i], nil
}

func (terminalPrompter) ConfirmResume() (bool, error) {
	return ui.Confirm("An integration is already in progress. Continue where you left off?",
		ui.WithDescription("Choosing No starts over and generates a new handler URL"),
		ui.WithLabels("Continue", "Start over"),
	)
}

func (terminalPrompter) FillFields(step wizard.Step, current map[wizard.FieldName]string) (map[wizard.FieldName]string, error) {
	values := make(map[wizard.FieldName]*string, len(step.Inputs))
	fields := make([]ui.InputField, 0, len(step.Inputs))
	for _, name := range step.Inputs {
		meta, _ := wizard.Spec(name)
		value := current[name]
		values[name] = &value
		fields = append(fields, ui.InputField{
			Title:       meta.Label,
			Placeholder: meta.Placeholder,
			Value:       values[name],
			Secret:      meta.Secret,
		})
	}

	if err := ui.InputForm(fields); err != nil {
		return nil, err
	}

	out := make(map[wizard.FieldName]string, len(values))
	for name, v := range values {
		out[name] = *v
	}
	return out, nil
}

func (terminalPrompter) Navigate(step wizard.Step, next string) (navigation, error) {
	options := []ui.SelectOption[navigation]{{Label: next, Value: navNext}}
	if step.Index > 1 {
		options = append(options, ui.SelectOption[navigation]{Label: "Back", Value: navBack})
	}
	options = append(options, ui.SelectOption[navigation]{Label: "Cancel", Value: navCancel})
	return ui.Select("What next?", options)
}

// nextLabel names the forward choice. A link step whose URL already exists
// only moves on.
func nextLabel(step wizard.Step, state wizard.State, last bool) string {
	switch {
	case last:
		return "Finish"
	case step.Action == wizard.ActionGenerateLink && state.HasLink():
		return "Next"
	case step.Action == wizard.ActionGenerateLink:
		return "Generate handler URL"
	case step.Action == wizard.ActionSaveAndRegister:
		return "Save tokens and register"
	default:
		return "Next"
	}
}

func isUserAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}
