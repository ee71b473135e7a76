package constants

import (
	"time"
)

const (
	CliName        = "botdash"
	UserAgent      = "botdash-cli"
	ConfigDir      = ".botdash"
	StateDirName   = "state"
	ConfigFileName = "config.yaml"

	// Logging Levels
	DefaultLogLevel = "info"

	// Default settings
	DefaultEnvFileName          = ".env"
	DefaultWizardVariant        = "guided"
	DefaultProvisioningTimeout  = 30 * time.Second
	DefaultServiceTimeout       = 15 * time.Second
	MaxProvisioningResponseSize = 1 << 20

	// Integration
	IntegrationTypeBitrix = "BITRIX"
	BitrixPortalSuffix    = ".bitrix24.com"

	// Remote paths, primary spelling first
	GenerateLinkPath       = "/integrations/generate-link"
	GenerateLinkLegacyPath = "/integration/generate-link"
	SaveTokensPath         = "/integrations/tokens"
	SaveTokensLegacyPath   = "/integration/tokens"
	RegisterBotPath        = "/integrations/bitrix/register-bot"
	RegisterBotLegacyPath  = "/integration/bitrix/register-bot"

	TestBotID       = "bot-42"
	TestBotName     = "Support Bot"
	TestPortal      = "foo.bitrix24.com"
	TestWebhookURL  = "https://handler/xyz"
	TestIntegration = "int-1"
)
