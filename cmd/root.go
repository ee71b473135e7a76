package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/cmd/bot"
	"github.com/botdash/botdash-cli/cmd/client"
	"github.com/botdash/botdash-cli/cmd/integration"
	"github.com/botdash/botdash-cli/cmd/login"
	"github.com/botdash/botdash-cli/cmd/logout"
	"github.com/botdash/botdash-cli/cmd/version"
	"github.com/botdash/botdash-cli/cmd/whoami"
	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/logger"
	botruntime "github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/settings"
	"github.com/botdash/botdash-cli/internal/update"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCommand()

func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootLogger := createLogger()
	rootViper := createViper()
	runtimeContext := botruntime.NewContext(rootLogger, rootViper)

	// By defining a Run func, we force PersistentPreRunE to execute
	// even when 'botdash', 'integration', etc is called with no subcommand
	helpRunE := func(cmd *cobra.Command, args []string) error {
		err := cmd.Help()
		if err != nil {
			return fmt.Errorf("fail to show help: %w", err)
		}
		return nil
	}

	rootCmd := &cobra.Command{
		Use:               constants.CliName,
		Short:             "Botdash CLI tool",
		Long:              `A command line tool for managing Botdash chatbots and connecting them to external platforms such as Bitrix24.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE:              helpRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := runtimeContext.Logger
			v := runtimeContext.Viper

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if verbose := v.GetBool(settings.Flags.Verbose.Name); verbose {
				newLogger := log.Level(zerolog.DebugLevel)
				runtimeContext.Logger = &newLogger
				runtimeContext.ClientFactory = client.NewFactory(&newLogger, v)
			}

			if isLoadEnvAndSettings(cmd) {
				if err := runtimeContext.AttachSettings(); err != nil {
					return err
				}
			}

			if err := runtimeContext.AttachEnvironmentSet(); err != nil {
				return err
			}

			if isLoadCredentials(cmd) {
				if err := runtimeContext.AttachCredentials(cmd.Context(), skipCredentialValidation(cmd)); err != nil {
					return fmt.Errorf("failed to attach credentials: %w", err)
				}
			}

			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			switch cmd.Name() {
			case "bash", "zsh", "fish", "powershell", "help":
				return
			}
			update.CheckForUpdates(version.Version, runtimeContext.Logger)
		},
	}

	cobra.AddTemplateFunc("commandSections", commandSections)
	cobra.AddTemplateFunc("flagUsages", flagUsages)
	rootCmd.SetHelpTemplate(helpTemplate)

	// env file flag is present for every subcommand
	rootCmd.PersistentFlags().StringP(
		settings.Flags.CliEnvFile.Name,
		settings.Flags.CliEnvFile.Short,
		constants.DefaultEnvFileName,
		fmt.Sprintf("Path to %s file which contains sensitive info", constants.DefaultEnvFileName),
	)

	rootCmd.PersistentFlags().BoolP(
		settings.Flags.Verbose.Name,
		settings.Flags.Verbose.Short,
		false,
		"Run command in VERBOSE mode",
	)

	rootCmd.PersistentFlags().Bool(
		settings.Flags.NonInteractive.Name,
		false,
		"Fail instead of prompting for input",
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	versionCmd := version.New(runtimeContext)
	loginCmd := login.New(runtimeContext)
	logoutCmd := logout.New(runtimeContext)
	whoamiCmd := whoami.New(runtimeContext)
	botCmd := bot.New(runtimeContext)
	integrationCmd := integration.New(runtimeContext)

	botCmd.RunE = helpRunE
	integrationCmd.RunE = helpRunE

	// Define groups (order controls display order)
	rootCmd.AddGroup(&cobra.Group{ID: "getting-started", Title: "Getting Started"})
	rootCmd.AddGroup(&cobra.Group{ID: "account", Title: "Account"})
	rootCmd.AddGroup(&cobra.Group{ID: "integrations", Title: "Integrations"})

	loginCmd.GroupID = "getting-started"
	botCmd.GroupID = "getting-started"

	logoutCmd.GroupID = "account"
	whoamiCmd.GroupID = "account"

	integrationCmd.GroupID = "integrations"

	rootCmd.AddCommand(
		versionCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		botCmd,
		integrationCmd,
	)

	return rootCmd
}

func isLoadEnvAndSettings(cmd *cobra.Command) bool {
	// Settings only matter to commands that open or inspect the wizard
	var excludedCommands = map[string]struct{}{
		"version":     {},
		"login":       {},
		"logout":      {},
		"whoami":      {},
		"bash":        {},
		"fish":        {},
		"powershell":  {},
		"zsh":         {},
		"help":        {},
		"botdash":     {},
		"bot":         {},
		"list":        {},
		"integration": {},
		"bitrix":      {},
	}

	_, exists := excludedCommands[cmd.Name()]
	return !exists
}

func isLoadCredentials(cmd *cobra.Command) bool {
	// It is not expected to have the credentials loaded when running the following commands
	var excludedCommands = map[string]struct{}{
		"version":     {},
		"login":       {},
		"bash":        {},
		"fish":        {},
		"powershell":  {},
		"zsh":         {},
		"help":        {},
		"botdash":     {},
		"bot":         {},
		"integration": {},
		"bitrix":      {},
		"status":      {},
		"reset":       {},
	}

	_, exists := excludedCommands[cmd.Name()]
	return !exists
}

// skipCredentialValidation lists commands that only need the stored
// credentials, not a round trip to confirm them.
func skipCredentialValidation(cmd *cobra.Command) bool {
	return cmd.Name() == "logout"
}

func createLogger() *zerolog.Logger {
	return logger.NewConsoleLogger()
}

func createViper() *viper.Viper {
	return viper.New() //nolint:forbidigo
}
