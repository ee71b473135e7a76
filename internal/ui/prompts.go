package ui

import (
	"os"

	"github.com/charmbracelet/huh"
)

// AccessibleEnvVar switches prompts to huh's line based accessible mode,
// which also works when stdin is a pipe.
const AccessibleEnvVar = "ACCESSIBLE"

func runForm(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(BotdashTheme()).
		WithKeyMap(BotdashKeyMap()).
		WithAccessible(os.Getenv(AccessibleEnvVar) != "").
		Run()
}

// ConfirmOption configures a Confirm prompt.
type ConfirmOption func(*confirmConfig)

type confirmConfig struct {
	affirmative string
	negative    string
	description string
}

// WithLabels replaces the default Yes/No button labels.
func WithLabels(affirmative, negative string) ConfirmOption {
	return func(c *confirmConfig) {
		c.affirmative = affirmative
		c.negative = negative
	}
}

func WithDescription(desc string) ConfirmOption {
	return func(c *confirmConfig) {
		c.description = desc
	}
}

func newConfirm(title string, cfg confirmConfig, result *bool) *huh.Confirm {
	c := huh.NewConfirm().Title(title).Value(result)
	if cfg.affirmative != "" {
		c = c.Affirmative(cfg.affirmative)
	}
	if cfg.negative != "" {
		c = c.Negative(cfg.negative)
	}
	if cfg.description != "" {
		c = c.Description(cfg.description)
	}
	return c
}

// Confirm asks a yes/no question.
func Confirm(title string, opts ...ConfirmOption) (bool, error) {
	var cfg confirmConfig
	for _, o := range opts {
		o(&cfg)
	}
	var result bool
	if err := runForm(newConfirm(title, cfg, &result)); err != nil {
		return false, err
	}
	return result, nil
}

// InputOption configures an Input prompt.
type InputOption func(*InputField)

func WithInputDescription(desc string) InputOption {
	return func(f *InputField) {
		f.Description = desc
	}
}

// WithSecret masks the typed value.
func WithSecret() InputOption {
	return func(f *InputField) {
		f.Secret = true
	}
}

// WithValidation keeps the prompt open until fn returns nil.
func WithValidation(fn func(string) error) InputOption {
	return func(f *InputField) {
		f.Validate = fn
	}
}

// Input asks for a single line of text.
func Input(title string, opts ...InputOption) (string, error) {
	var result string
	field := InputField{Title: title, Value: &result}
	for _, o := range opts {
		o(&field)
	}
	if err := runForm(field.build()); err != nil {
		return "", err
	}
	return result, nil
}

// SelectOption is one choice of a Select prompt.
type SelectOption[T comparable] struct {
	Label string
	Value T
}

// Select asks the user to pick one of options.
func Select[T comparable](title string, options []SelectOption[T]) (T, error) {
	var result T
	huhOpts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		huhOpts[i] = huh.NewOption(opt.Label, opt.Value)
	}

	sel := huh.NewSelect[T]().Title(title).Options(huhOpts...).Value(&result)
	if err := runForm(sel); err != nil {
		return result, err
	}
	return result, nil
}

// InputField is one text input of an InputForm. A non-empty *Value is shown
// as the starting text and receives the answer.
type InputField struct {
	Title       string
	Description string
	Placeholder string
	Value       *string
	Validate    func(string) error
	Secret      bool
}

func (f InputField) build() *huh.Input {
	in := huh.NewInput().Title(f.Title).Value(f.Value)
	if f.Description != "" {
		in = in.Description(f.Description)
	}
	if f.Placeholder != "" {
		in = in.Placeholder(f.Placeholder)
	}
	if f.Validate != nil {
		in = in.Validate(f.Validate)
	}
	if f.Secret {
		in = in.EchoMode(huh.EchoModePassword)
	}
	return in
}

// InputForm shows several inputs on one screen.
func InputForm(fields []InputField) error {
	huhFields := make([]huh.Field, len(fields))
	for i, f := range fields {
		huhFields[i] = f.build()
	}
	return runForm(huhFields...)
}
