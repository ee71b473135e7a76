package connect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/client/botclient"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/settings"
	"github.com/botdash/botdash-cli/internal/ui"
	"github.com/botdash/botdash-cli/internal/validation"
	"github.com/botdash/botdash-cli/internal/wizard"
)

var (
	errInteractiveOnly = errors.New("bitrix connect walks you through the Bitrix24 UI and needs an interactive terminal, remove --non-interactive")
	errNoBots          = errors.New("no bots found in your workspace, create one in the dashboard first")
)

type Inputs struct {
	BotID  string `validate:"omitempty,bot_id" cli:"--bot-id"`
	Resume bool
}

type botResolver interface {
	GetBot(ctx context.Context, id string) (botclient.Bot, error)
	ListBots(ctx context.Context) ([]botclient.Bot, error)
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connects a bot to a Bitrix24 portal",
		Long: `Walks through registering a bot as a Bitrix24 chatbot application: creating the
local application, generating its handler URL and submitting the OAuth tokens.

An interrupted run can be continued with --resume once the handler URL was generated.`,
		Example: "botdash integration bitrix connect --bot-id bot-42",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := runtimeContext.Viper
			h := newHandler(runtimeContext)

			inputs := Inputs{
				BotID:  strings.TrimSpace(v.GetString(settings.Flags.BotID.Name)),
				Resume: v.GetBool(settings.Flags.Resume.Name),
			}
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			if h.nonInteractive {
				return errInteractiveOnly
			}

			store, err := runtimeContext.ClientFactory.OpenResumeStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					h.log.Debug().Err(err).Msg("Failed to close wizard state")
				}
			}()

			return h.Execute(cmd.Context(), inputs, store)
		},
	}

	cmd.Flags().StringP(settings.Flags.BotID.Name, settings.Flags.BotID.Short, "", "Bot to connect (chosen from a list when omitted)")
	cmd.Flags().Bool(settings.Flags.Resume.Name, false, "Continue the integration whose handler URL was already generated")
	settings.AddWizardFlags(cmd)

	return cmd
}

type handler struct {
	log            *zerolog.Logger
	variant        string
	nonInteractive bool
	bots           botResolver
	provisioner    wizard.Provisioner
	prompts        prompter
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:            ctx.Logger,
		variant:        ctx.Settings.Wizard.Variant,
		nonInteractive: ctx.Settings.NonInteractive,
		bots:           ctx.ClientFactory.NewBotClient(ctx.Credentials, ctx.EnvironmentSet),
		provisioner:    ctx.ClientFactory.NewProvisioningClient(ctx.Credentials, ctx.EnvironmentSet, ctx.Settings),
		prompts:        terminalPrompter{},
	}
}

func (h *handler) ValidateInputs(inputs Inputs) error {
	v, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}
	return v.Struct(inputs)
}

func (h *handler) Execute(ctx context.Context, inputs Inputs, store wizard.IntegrationStore) error {
	registry, err := wizard.NewRegistry(h.variant)
	if err != nil {
		return err
	}

	bot, err := h.resolveBot(ctx, inputs.BotID)
	if err != nil {
		return err
	}

	cfg := wizard.Config{
		Registry:       registry,
		Client:         h.provisioner,
		Store:          store,
		Log:            h.log,
		BotID:          bot.ID,
		BotDisplayName: bot.DisplayName,
	}
	w, err := h.openWizard(cfg, inputs.Resume)
	if err != nil {
		return err
	}
	return h.run(ctx, w, store)
}

func (h *handler) resolveBot(ctx context.Context, botID string) (botclient.Bot, error) {
	if botID != "" {
		bot, err := ui.WithSpinnerResult("Looking up bot...", func() (botclient.Bot, error) {
			return h.bots.GetBot(ctx, botID)
		})
		if err != nil {
			return botclient.Bot{}, fmt.Errorf("failed to resolve bot %s: %w", botID, err)
		}
		return bot, nil
	}

	bots, err := ui.WithSpinnerResult("Fetching bots...", func() ([]botclient.Bot, error) {
		return h.bots.ListBots(ctx)
	})
	if err != nil {
		return botclient.Bot{}, fmt.Errorf("failed to list bots: %w", err)
	}
	switch len(bots) {
	case 0:
		return botclient.Bot{}, errNoBots
	case 1:
		return bots[0], nil
	}
	return h.prompts.SelectBot(bots)
}

// openWizard resumes only when an integration id is stored, asking first
// unless --resume was given.
func (h *handler) openWizard(cfg wizard.Config, resume bool) (*wizard.Wizard, error) {
	if _, err := cfg.Store.IntegrationID(); err != nil {
		if resume {
			ui.Warning("No integration in progress, starting from the beginning")
		}
		h.log.Debug().Err(err).Msg("Opening a fresh integration wizard")
		return wizard.New(cfg)
	}

	if !resume {
		answer, err := h.prompts.ConfirmResume()
		if err != nil {
			return nil, err
		}
		resume = answer
	}
	if resume {
		return wizard.Resume(cfg)
	}
	return wizard.New(cfg)
}

func (h *handler) run(ctx context.Context, w *wizard.Wizard, store wizard.IntegrationStore) error {
	total := w.Registry().Total()

	for !w.Closed() {
		step := w.CurrentStep()
		state := w.State()
		render(w.Registry(), step, state)

		if !step.Informational {
			values, err := h.prompts.FillFields(step, state.Fields)
			if err != nil {
				return h.abort(w, store, err)
			}
			for _, name := range step.Inputs {
				if err := w.SetField(name, values[name]); err != nil {
					return err
				}
			}
		}

		nav, err := h.prompts.Navigate(step, nextLabel(step, state, step.Index == total))
		if err != nil {
			return h.abort(w, store, err)
		}

		switch nav {
		case navBack:
			w.Retreat()
			continue
		case navCancel:
			w.Close()
			printCancelled(store)
			return nil
		}

		outcome := h.advance(ctx, w, step)
		h.log.Debug().Str("outcome", outcome.String()).Int("step", step.Index).Msg("Wizard advanced")
		if outcome == wizard.OutcomeCompleted {
			ui.Line()
			ui.Success("Bitrix24 integration complete")
			ui.Dim("Your bot now answers in the Bitrix24 chats it is invited to.")
			return nil
		}
	}
	return nil
}

func (h *handler) advance(ctx context.Context, w *wizard.Wizard, step wizard.Step) wizard.Outcome {
	var message string
	switch step.Action {
	case wizard.ActionGenerateLink:
		if w.State().HasLink() {
			return w.Advance(ctx)
		}
		message = "Generating the handler URL..."
	case wizard.ActionSaveAndRegister:
		message = "Saving tokens and registering the bot..."
	default:
		return w.Advance(ctx)
	}
	outcome, _ := ui.WithSpinnerResult(message, func() (wizard.Outcome, error) {
		return w.Advance(ctx), nil
	})
	return outcome
}

// abort treats an interrupted prompt (Ctrl+C) like cancel.
func (h *handler) abort(w *wizard.Wizard, store wizard.IntegrationStore, err error) error {
	w.Close()
	if isUserAbort(err) {
		printCancelled(store)
		return nil
	}
	return fmt.Errorf("failed to read input: %w", err)
}

func printCancelled(store wizard.IntegrationStore) {
	ui.Line()
	ui.Warning("Integration cancelled")
	if _, err := store.IntegrationID(); err == nil {
		ui.Dim("Continue later with:")
		ui.Command("  botdash integration bitrix connect --resume")
	}
}
