package wizard

import (
	"fmt"
	"slices"
)

// FieldName identifies a value collected by the wizard.
type FieldName string

const (
	FieldBotDisplayName FieldName = "botDisplayName"
	FieldClientID       FieldName = "clientId"
	FieldClientSecret   FieldName = "clientSecret"
	FieldPortalDomain   FieldName = "portalDomain"
	FieldAccessToken    FieldName = "accessToken"
	FieldRefreshToken   FieldName = "refreshToken"
)

// FieldSpec describes how a field is presented and logged.
type FieldSpec struct {
	Name        FieldName
	Label       string
	Placeholder string
	Secret      bool
}

var fieldSpecs = map[FieldName]FieldSpec{
	FieldBotDisplayName: {Name: FieldBotDisplayName, Label: "Bot display name", Placeholder: "Support Bot"},
	FieldClientID:       {Name: FieldClientID, Label: "Client ID (client_id)", Placeholder: "local.64f0c0ffee.12345678"},
	FieldClientSecret:   {Name: FieldClientSecret, Label: "Client secret (client_secret)", Secret: true},
	FieldPortalDomain:   {Name: FieldPortalDomain, Label: "Portal domain", Placeholder: "yourcompany.bitrix24.com"},
	FieldAccessToken:    {Name: FieldAccessToken, Label: "Access token", Secret: true},
	FieldRefreshToken:   {Name: FieldRefreshToken, Label: "Refresh token", Secret: true},
}

// Spec returns the presentation details of a field.
func Spec(name FieldName) (FieldSpec, bool) {
	s, ok := fieldSpecs[name]
	return s, ok
}

// IsSecret reports whether a field value must be masked on screen and in logs.
func IsSecret(name FieldName) bool {
	return fieldSpecs[name].Secret
}

// Action is the remote side effect a step triggers when the user advances past it.
type Action int

const (
	ActionNone Action = iota
	ActionGenerateLink
	ActionSaveAndRegister
)

func (a Action) String() string {
	switch a {
	case ActionGenerateLink:
		return "GENERATE_LINK"
	case ActionSaveAndRegister:
		return "SAVE_AND_REGISTER"
	default:
		return "NONE"
	}
}

// Step is an immutable entry in a Registry.
type Step struct {
	Index int
	Title string
	Body  string
	// Inputs are the fields collected on this step, in display order.
	Inputs []FieldName
	// RequiredFields must be non-blank before the step can be left forwards.
	RequiredFields []FieldName
	Action         Action
	// Informational steps collect nothing; exactly the steps without Inputs.
	Informational bool
	// ShowWebhook marks steps that present the generated webhook URL.
	ShowWebhook bool
}

const (
	VariantGuided  = "guided"
	VariantCompact = "compact"
)

// Variants lists the registry layouts in the order they are offered.
var Variants = []string{VariantGuided, VariantCompact}

// Registry is the ordered catalog of steps for one wizard layout.
type Registry struct {
	variant string
	steps   []Step
}

// NewRegistry builds the registry for a layout.
func NewRegistry(variant string) (*Registry, error) {
	var defs []Step
	switch variant {
	case VariantGuided:
		defs = guidedSteps()
	case VariantCompact:
		defs = compactSteps()
	default:
		return nil, fmt.Errorf("unknown wizard variant %q, expected one of %v", variant, Variants)
	}

	for i := range defs {
		defs[i].Index = i + 1
	}
	r := &Registry{variant: variant, steps: defs}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) check() error {
	genAt, saveAt := 0, 0
	for _, s := range r.steps {
		switch s.Action {
		case ActionGenerateLink:
			if genAt != 0 {
				return fmt.Errorf("variant %s: more than one %s step", r.variant, s.Action)
			}
			genAt = s.Index
		case ActionSaveAndRegister:
			if saveAt != 0 {
				return fmt.Errorf("variant %s: more than one %s step", r.variant, s.Action)
			}
			saveAt = s.Index
		}
		if s.Informational != (len(s.Inputs) == 0) {
			return fmt.Errorf("variant %s step %d: informational steps, and only those, have no inputs", r.variant, s.Index)
		}
		for _, f := range append(slices.Clone(s.Inputs), s.RequiredFields...) {
			if _, ok := fieldSpecs[f]; !ok {
				return fmt.Errorf("variant %s step %d: unknown field %q", r.variant, s.Index, f)
			}
		}
	}
	if genAt == 0 || saveAt == 0 || genAt >= saveAt {
		return fmt.Errorf("variant %s: link generation must come before token registration", r.variant)
	}
	if saveAt == len(r.steps) {
		return fmt.Errorf("variant %s: token registration cannot be the final step", r.variant)
	}
	return nil
}

func (r *Registry) Variant() string {
	return r.variant
}

func (r *Registry) Total() int {
	return len(r.steps)
}

// Step returns the step with the given 1-based index.
func (r *Registry) Step(index int) (Step, bool) {
	if index < 1 || index > len(r.steps) {
		return Step{}, false
	}
	return r.steps[index-1], true
}

// Steps returns a copy of all steps in order.
func (r *Registry) Steps() []Step {
	return slices.Clone(r.steps)
}

// StepFor returns the step carrying the given action.
func (r *Registry) StepFor(action Action) (Step, bool) {
	for _, s := range r.steps {
		if s.Action == action && action != ActionNone {
			return s, true
		}
	}
	return Step{}, false
}

// ResumeStep is where a wizard reopened from a stored integration id starts:
// the step right after link generation.
func (r *Registry) ResumeStep() int {
	s, _ := r.StepFor(ActionGenerateLink)
	return s.Index + 1
}

func guidedSteps() []Step {
	return []Step{
		{
			Title:         "Connect your bot to Bitrix24",
			Body:          "This guide registers your bot as a chatbot application inside your Bitrix24 portal. You will need administrator access to the portal. Keep this terminal open while you work in the browser.",
			Informational: true,
		},
		{
			Title:         "Open the developer resources",
			Body:          "In Bitrix24 open Applications > Developer resources > Other > Local application.",
			Informational: true,
		},
		{
			Title:         "Create a server-side local application",
			Body:          "Choose \"Server\" as the application type, leave \"Uses only API\" unchecked and enter any handler path for now. The real handler URL is generated in a later step.",
			Informational: true,
		},
		{
			Title:         "Grant permissions",
			Body:          "Enable the Chat bots (imbot), Chat and notifications (im) and CRM (crm) scopes, then save the application.",
			Informational: true,
		},
		{
			Title:          "Name the bot",
			Body:           "This is the name users will see in Bitrix24 chats.",
			Inputs:         []FieldName{FieldBotDisplayName},
			RequiredFields: []FieldName{FieldBotDisplayName},
		},
		{
			Title:          "Enter the application credentials",
			Body:           "Copy the Application ID (client_id) and Application key (client_secret) shown after saving the application, together with your portal domain.",
			Inputs:         []FieldName{FieldClientID, FieldClientSecret, FieldPortalDomain},
			RequiredFields: []FieldName{FieldClientID, FieldClientSecret, FieldPortalDomain},
			Action:         ActionGenerateLink,
		},
		{
			Title:         "Set the handler URL",
			Body:          "Paste this URL into both the \"Your handler path\" and \"Initial installation path\" fields of the local application and save it.",
			Informational: true,
			ShowWebhook:   true,
		},
		{
			Title:         "Install the application",
			Body:          "Open the application from the Applications menu and confirm the installation. Bitrix24 calls the handler URL once installation finishes.",
			Informational: true,
		},
		{
			Title:         "Collect the OAuth tokens",
			Body:          "After installation the application page shows an access token and a refresh token. Keep the page open, you will paste both in the next step.",
			Informational: true,
		},
		{
			Title:          "Enter the OAuth tokens",
			Body:           "The tokens are stored for this integration and the bot is registered in your portal.",
			Inputs:         []FieldName{FieldAccessToken, FieldRefreshToken},
			RequiredFields: []FieldName{FieldAccessToken, FieldRefreshToken},
			Action:         ActionSaveAndRegister,
		},
		{
			Title:         "All set",
			Body:          "Your bot is registered in Bitrix24. Invite it to a chat to start a conversation.",
			Informational: true,
		},
	}
}

func compactSteps() []Step {
	return []Step{
		{
			Title:         "Bitrix24 integration",
			Body:          "Register this bot as a Bitrix24 chatbot application.",
			Informational: true,
		},
		{
			Title:          "Bot name",
			Inputs:         []FieldName{FieldBotDisplayName},
			RequiredFields: []FieldName{FieldBotDisplayName},
		},
		{
			Title:         "Create a local application",
			Body:          "Applications > Developer resources > Other > Local application. Type: Server. Scopes: imbot, im, crm.",
			Informational: true,
		},
		{
			Title:          "Client ID",
			Inputs:         []FieldName{FieldClientID},
			RequiredFields: []FieldName{FieldClientID},
		},
		{
			Title:          "Client secret",
			Inputs:         []FieldName{FieldClientSecret},
			RequiredFields: []FieldName{FieldClientSecret},
		},
		{
			Title:          "Portal domain",
			Inputs:         []FieldName{FieldPortalDomain},
			RequiredFields: []FieldName{FieldClientID, FieldClientSecret, FieldPortalDomain},
			Action:         ActionGenerateLink,
		},
		{
			Title:         "Handler URL",
			Body:          "Paste this URL into the handler and installation paths of the application.",
			Informational: true,
			ShowWebhook:   true,
		},
		{
			Title:         "Install",
			Body:          "Install the application from the Applications menu.",
			Informational: true,
		},
		{
			Title:          "Access token",
			Inputs:         []FieldName{FieldAccessToken},
			RequiredFields: []FieldName{FieldAccessToken},
		},
		{
			Title:          "Refresh token",
			Inputs:         []FieldName{FieldRefreshToken},
			RequiredFields: []FieldName{FieldRefreshToken},
		},
		{
			Title:          "Register the bot",
			Body:           "Save the tokens and register the bot in your portal.",
			RequiredFields: []FieldName{FieldAccessToken, FieldRefreshToken},
			Action:         ActionSaveAndRegister,
			Informational:  true,
		},
		{
			Title:         "Done",
			Body:          "The bot is live in Bitrix24.",
			Informational: true,
		},
	}
}
