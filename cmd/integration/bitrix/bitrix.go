package bitrix

import (
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/cmd/integration/bitrix/connect"
	"github.com/botdash/botdash-cli/cmd/integration/bitrix/reset"
	"github.com/botdash/botdash-cli/cmd/integration/bitrix/status"
	"github.com/botdash/botdash-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	bitrixCmd := &cobra.Command{
		Use:   "bitrix",
		Short: "Manages the Bitrix24 integration",
		Long:  "Register a bot as a Bitrix24 chatbot application and inspect or reset the integration in progress.",
	}

	bitrixCmd.AddCommand(connect.New(runtimeContext))
	bitrixCmd.AddCommand(status.New(runtimeContext))
	bitrixCmd.AddCommand(reset.New(runtimeContext))

	return bitrixCmd
}
