package validation

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minAPIKeyLength = 16
	maxBotIDLength  = 64
)

func isAPIKey(fl validator.FieldLevel) bool {
	key, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return len(key) >= minAPIKeyLength && !strings.ContainsFunc(key, unicode.IsSpace)
}

func isBotID(fl validator.FieldLevel) bool {
	id, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return id != "" && len(id) <= maxBotIDLength && !strings.ContainsFunc(id, unicode.IsSpace)
}

func isPositiveDuration(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(time.Duration)
	if !ok {
		return false
	}
	return d > 0
}
