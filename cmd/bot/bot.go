package bot

import (
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/cmd/bot/list"
	"github.com/botdash/botdash-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Inspects your bots",
		Long:  "Look up the bots in your workspace, e.g. to find the id passed to --bot-id.",
	}

	botCmd.AddCommand(list.New(runtimeContext))

	return botCmd
}
