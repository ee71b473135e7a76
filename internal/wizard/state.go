package wizard

import (
	"maps"
	"strings"

	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/client/provisioning"
	"github.com/botdash/botdash-cli/internal/logger"
)

// ErrorKind classifies State.LastError so the terminal can phrase guidance.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = ErrorKind(provisioning.KindTransport)
	KindTimeout    ErrorKind = ErrorKind(provisioning.KindTimeout)
	KindRejected   ErrorKind = ErrorKind(provisioning.KindRejected)
)

const (
	MessageMissingFields = "Please fill in all fields"
	MessageMissingBot    = "No bot selected, reopen the wizard with --bot-id"
	MessageMissingID     = "Integration not found, go back to the credentials step and generate the link again"
	MessageLinkLocked    = "The handler URL was already generated for the previous app credentials. Restore them, or cancel and start over to use new ones"
)

// linkCredentials are the field values a handler URL was generated from.
type linkCredentials struct {
	clientID     string
	clientSecret string
	portalDomain string
}

func credentialsOf(s State) linkCredentials {
	return linkCredentials{
		clientID:     s.Field(FieldClientID),
		clientSecret: s.Field(FieldClientSecret),
		portalDomain: s.Field(FieldPortalDomain),
	}
}

// State is one provisioning attempt. Values handed out by Wizard are copies.
type State struct {
	CurrentStep int
	Fields      map[FieldName]string

	// BotID comes from the bot identity provider before the wizard opens.
	BotID string

	// IntegrationID and WebhookURL are set together by link generation.
	IntegrationID string
	WebhookURL    string
	linkedWith    linkCredentials

	InFlight      bool
	LastError     string
	LastErrorKind ErrorKind
}

func newState(botID, displayName string) State {
	s := State{
		CurrentStep: 1,
		Fields:      make(map[FieldName]string),
		BotID:       botID,
	}
	if displayName != "" {
		s.Fields[FieldBotDisplayName] = displayName
	}
	return s
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Fields = maps.Clone(s.Fields)
	if c.Fields == nil {
		c.Fields = make(map[FieldName]string)
	}
	return c
}

// Field returns the trimmed value of a field.
func (s State) Field(name FieldName) string {
	return strings.TrimSpace(s.Fields[name])
}

// HasLink reports whether a handler URL was generated in this session.
func (s State) HasLink() bool {
	return s.IntegrationID != "" && s.WebhookURL != ""
}

// credentialsChanged reports whether the app credentials differ from the
// ones the current link was generated with.
func (s State) credentialsChanged() bool {
	return s.HasLink() && credentialsOf(s) != s.linkedWith
}

func (s *State) clearError() {
	s.LastError = ""
	s.LastErrorKind = KindNone
}

func (s *State) fail(kind ErrorKind, msg string) {
	s.LastError = msg
	s.LastErrorKind = kind
}

// MarshalZerologObject logs the state with secret fields redacted.
func (s State) MarshalZerologObject(e *zerolog.Event) {
	fields := make(map[string]string, len(s.Fields))
	sensitive := make(map[string]bool)
	for name, v := range s.Fields {
		fields[string(name)] = v
		if IsSecret(name) {
			sensitive[string(name)] = true
		}
	}

	e.Int("step", s.CurrentStep).
		Str("botId", s.BotID).
		Str("integrationId", s.IntegrationID).
		Bool("inFlight", s.InFlight).
		Object("fields", logger.FieldsWrapper{Fields: fields, Sensitive: sensitive})
	if s.LastError != "" {
		e.Str("lastError", s.LastError).Str("errorKind", string(s.LastErrorKind))
	}
}
