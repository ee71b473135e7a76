// Package wizard drives the Bitrix24 integration flow: a fixed sequence of
// steps where two steps call the provisioning backend before moving on.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/provisioning"
)

var (
	ErrClosed           = errors.New("wizard is closed")
	ErrBusy             = errors.New("a request is still in progress")
	ErrNothingToResume  = errors.New("no integration in progress")
	errUnknownFieldName = errors.New("unknown field")
)

// Outcome summarizes what an Advance or Retreat did.
type Outcome int

const (
	// OutcomeBlocked: position held because of a validation error, or Retreat on the first step.
	OutcomeBlocked Outcome = iota
	OutcomeMoved
	// OutcomeCompleted: the final step was accepted and the wizard closed.
	OutcomeCompleted
	// OutcomeFailed: a remote call failed and position is held.
	OutcomeFailed
	// OutcomeBusy: a remote call is pending, nothing was done.
	OutcomeBusy
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlocked:
		return "blocked"
	case OutcomeMoved:
		return "moved"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	case OutcomeClosed:
		return "closed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Provisioner is the remote side of the flow.
type Provisioner interface {
	GenerateLink(ctx context.Context, req provisioning.GenerateLinkRequest) (provisioning.GenerateLinkResult, error)
	SaveTokens(ctx context.Context, req provisioning.SaveTokensRequest) error
	RegisterBot(ctx context.Context, req provisioning.RegisterBotRequest) (provisioning.RegisterBotResult, error)
}

// IntegrationStore durably remembers the last generated integration id.
type IntegrationStore interface {
	IntegrationID() (string, error)
	SaveIntegrationID(id string) error
}

type Config struct {
	Registry       *Registry
	Client         Provisioner
	Store          IntegrationStore
	Log            *zerolog.Logger
	BotID          string
	BotDisplayName string
}

func (c Config) validate() error {
	switch {
	case c.Registry == nil:
		return errors.New("wizard registry is required")
	case c.Client == nil:
		return errors.New("provisioning client is required")
	case c.Store == nil:
		return errors.New("integration store is required")
	case c.Log == nil:
		return errors.New("logger is required")
	}
	return nil
}

// Wizard owns one State. All methods are safe for concurrent use; a remote
// call runs without holding the lock so the state stays readable meanwhile.
type Wizard struct {
	mu     sync.Mutex
	reg    *Registry
	client Provisioner
	store  IntegrationStore
	log    *zerolog.Logger
	state  State
	closed bool
}

// New opens a fresh wizard on the first step.
func New(cfg Config) (*Wizard, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Wizard{
		reg:    cfg.Registry,
		client: cfg.Client,
		store:  cfg.Store,
		log:    cfg.Log,
		state:  newState(cfg.BotID, cfg.BotDisplayName),
	}, nil
}

// Resume opens a wizard on the step after link generation when the store
// holds an integration id. The id itself is read again when tokens are
// submitted. The webhook URL is not persisted, so the state starts without a
// link: going back to the credentials step generates a new one and replaces
// the stored id.
func Resume(cfg Config) (*Wizard, error) {
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Store.IntegrationID(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNothingToResume, err)
	}
	w.state.CurrentStep = w.reg.ResumeStep()
	w.log.Debug().Int("step", w.state.CurrentStep).Msg("Resuming integration wizard")
	return w, nil
}

func (w *Wizard) Registry() *Registry {
	return w.reg
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// CurrentStep returns the step the wizard is on.
func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	step, _ := w.reg.Step(w.state.CurrentStep)
	return step
}

func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// SetField records user input. Values are stored as typed; trimming happens
// when they are checked or sent.
func (w *Wizard) SetField(name FieldName, value string) error {
	if _, ok := Spec(name); !ok {
		return fmt.Errorf("%w: %s", errUnknownFieldName, name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.state.InFlight {
		return ErrBusy
	}
	w.state.Fields[name] = value
	return nil
}

// Close discards the wizard. A response still in flight is dropped when it arrives.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.log.Debug().Int("step", w.state.CurrentStep).Msg("Integration wizard closed")
	}
}

// Retreat moves one step back. Entered fields and the generated link are kept.
func (w *Wizard) Retreat() Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return OutcomeClosed
	}
	if w.state.InFlight {
		return OutcomeBusy
	}
	next, moved := retreat(w.state)
	w.state = next
	if !moved {
		return OutcomeBlocked
	}
	return OutcomeMoved
}

// Advance tries to leave the current step forwards, calling the backend when
// the step requires it. A call while another is pending does nothing.
func (w *Wizard) Advance(ctx context.Context) Outcome {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return OutcomeClosed
	}
	if w.state.InFlight {
		w.mu.Unlock()
		return OutcomeBusy
	}

	next, eff := planAdvance(w.reg, w.state)
	switch eff {
	case effectHold:
		w.state = next
		w.mu.Unlock()
		return OutcomeBlocked
	case effectMove:
		w.state = next
		w.mu.Unlock()
		return OutcomeMoved
	case effectComplete:
		w.state = next
		w.closed = true
		w.mu.Unlock()
		w.log.Debug().Msg("Integration wizard completed")
		return OutcomeCompleted
	case effectGenerateLink:
		return w.generateLink(ctx, next)
	case effectSaveAndRegister:
		return w.saveAndRegister(ctx, next)
	}
	w.mu.Unlock()
	return OutcomeBlocked
}

// generateLink is entered with w.mu held and releases it.
func (w *Wizard) generateLink(ctx context.Context, next State) Outcome {
	next.InFlight = true
	w.state = next
	req := linkRequest(next)
	w.mu.Unlock()

	w.log.Debug().Str("portal", req.PortalDomain).Msg("Generating integration link")
	res, err := w.client.GenerateLink(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Debug().Msg("Discarding link generation result for a closed wizard")
		return OutcomeClosed
	}
	if err != nil {
		w.state = applyFailure(w.state, err)
		w.log.Debug().Object("state", w.state).Msg("Link generation failed")
		return OutcomeFailed
	}

	if err := w.store.SaveIntegrationID(res.IntegrationID); err != nil {
		w.log.Warn().Err(err).Msg("Could not remember the integration id, resuming later will not be possible")
	}
	w.state = applyGenerateLink(w.reg, w.state, req, res)
	w.log.Debug().Object("state", w.state).Msg("Integration link generated")
	return OutcomeMoved
}

// saveAndRegister is entered with w.mu held and releases it.
func (w *Wizard) saveAndRegister(ctx context.Context, next State) Outcome {
	integrationID := next.IntegrationID
	if integrationID == "" {
		stored, err := w.store.IntegrationID()
		if err != nil {
			w.log.Debug().Err(err).Msg("No integration id to register tokens against")
			next.fail(KindValidation, MessageMissingID)
			w.state = next
			w.mu.Unlock()
			return OutcomeBlocked
		}
		integrationID = stored
	}

	next.InFlight = true
	w.state = next
	tokens := tokensRequest(next, integrationID)
	register := provisioning.RegisterBotRequest{BotID: next.BotID}
	w.mu.Unlock()

	err := w.client.SaveTokens(ctx, tokens)
	if err == nil {
		var res provisioning.RegisterBotResult
		res, err = w.client.RegisterBot(ctx, register)
		if err == nil {
			w.log.Debug().Int("providerBots", len(res.ProviderBotIDs)).Msg("Bot registered")
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Debug().Msg("Discarding registration result for a closed wizard")
		return OutcomeClosed
	}
	if err != nil {
		w.state = applyFailure(w.state, err)
		w.log.Debug().Object("state", w.state).Msg("Token registration failed")
		return OutcomeFailed
	}
	w.state = applySaveAndRegister(w.reg, w.state)
	return OutcomeMoved
}
