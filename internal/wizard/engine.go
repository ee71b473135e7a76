package wizard

import (
	"github.com/botdash/botdash-cli/internal/client/provisioning"
	"github.com/botdash/botdash-cli/internal/constants"
)

// effect is what the driver must do after planning an advance.
type effect int

const (
	effectHold effect = iota
	effectMove
	effectComplete
	effectGenerateLink
	effectSaveAndRegister
)

// CanAdvance reports whether every required field of the current step is
// non-blank. It is a presence check only.
func CanAdvance(reg *Registry, s State) bool {
	return len(MissingFields(reg, s)) == 0
}

// MissingFields lists the required fields of the current step that are blank.
func MissingFields(reg *Registry, s State) []FieldName {
	step, ok := reg.Step(s.CurrentStep)
	if !ok {
		return nil
	}
	var missing []FieldName
	for _, f := range step.RequiredFields {
		if s.Field(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// planAdvance validates s and decides the next move. The returned state has
// its error cleared, or carries a validation error when the effect is effectHold.
func planAdvance(reg *Registry, s State) (State, effect) {
	next := s.Clone()
	next.clearError()

	step, ok := reg.Step(next.CurrentStep)
	if !ok {
		next.CurrentStep = max(1, min(next.CurrentStep, reg.Total()))
		return next, effectHold
	}

	if !CanAdvance(reg, next) {
		next.fail(KindValidation, MessageMissingFields)
		return next, effectHold
	}

	switch step.Action {
	case ActionGenerateLink:
		// A link from earlier in this session is never replaced, so edited
		// credentials cannot be carried forward.
		if next.credentialsChanged() {
			next.fail(KindValidation, MessageLinkLocked)
			return next, effectHold
		}
		if next.HasLink() {
			return moveForward(reg, next)
		}
		if next.BotID == "" {
			next.fail(KindValidation, MessageMissingBot)
			return next, effectHold
		}
		return next, effectGenerateLink
	case ActionSaveAndRegister:
		if next.Field(FieldAccessToken) == "" || next.Field(FieldRefreshToken) == "" {
			next.fail(KindValidation, MessageMissingFields)
			return next, effectHold
		}
		if next.BotID == "" {
			next.fail(KindValidation, MessageMissingBot)
			return next, effectHold
		}
		return next, effectSaveAndRegister
	}

	return moveForward(reg, next)
}

func moveForward(reg *Registry, s State) (State, effect) {
	if s.CurrentStep >= reg.Total() {
		return s, effectComplete
	}
	s.CurrentStep++
	return s, effectMove
}

func retreat(s State) (State, bool) {
	next := s.Clone()
	next.clearError()
	if next.CurrentStep <= 1 {
		next.CurrentStep = 1
		return next, false
	}
	next.CurrentStep--
	return next, true
}

func linkRequest(s State) provisioning.GenerateLinkRequest {
	return provisioning.GenerateLinkRequest{
		ClientID:     s.Field(FieldClientID),
		ClientSecret: s.Field(FieldClientSecret),
		PortalDomain: s.Field(FieldPortalDomain),
		BotID:        s.BotID,
		Type:         constants.IntegrationTypeBitrix,
	}
}

func tokensRequest(s State, integrationID string) provisioning.SaveTokensRequest {
	return provisioning.SaveTokensRequest{
		IntegrationID: integrationID,
		AccessToken:   s.Field(FieldAccessToken),
		RefreshToken:  s.Field(FieldRefreshToken),
	}
}

func applyGenerateLink(reg *Registry, s State, sent provisioning.GenerateLinkRequest, res provisioning.GenerateLinkResult) State {
	next := s.Clone()
	next.InFlight = false
	if !next.HasLink() {
		next.IntegrationID = res.IntegrationID
		next.WebhookURL = res.WebhookURL
		next.linkedWith = linkCredentials{
			clientID:     sent.ClientID,
			clientSecret: sent.ClientSecret,
			portalDomain: sent.PortalDomain,
		}
	}
	next, _ = moveForward(reg, next)
	return next
}

func applySaveAndRegister(reg *Registry, s State) State {
	next := s.Clone()
	next.InFlight = false
	next, _ = moveForward(reg, next)
	return next
}

func applyFailure(s State, err error) State {
	next := s.Clone()
	next.InFlight = false
	kind := ErrorKind(provisioning.KindOf(err))
	if kind == KindNone {
		kind = KindTransport
	}
	next.fail(kind, err.Error())
	return next
}
