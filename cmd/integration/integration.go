package integration

import (
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/cmd/integration/bitrix"
	"github.com/botdash/botdash-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	integrationCmd := &cobra.Command{
		Use:   "integration",
		Short: "Connects bots to external platforms",
		Long:  "Provision and manage the integrations that deliver your bot to external chat platforms.",
	}

	integrationCmd.AddCommand(bitrix.New(runtimeContext))

	return integrationCmd
}
