package list

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/client/botclient"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/ui"
)

type botLister interface {
	ListBots(ctx context.Context) ([]botclient.Bot, error)
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "Lists bots in your workspace",
		Example: "botdash bot list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := runtimeContext.ClientFactory.NewBotClient(runtimeContext.Credentials, runtimeContext.EnvironmentSet)
			h := newHandler(runtimeContext.Logger, client, cmd.OutOrStdout())
			return h.Execute(cmd.Context())
		},
	}
}

type handler struct {
	log    *zerolog.Logger
	client botLister
	out    io.Writer
}

func newHandler(log *zerolog.Logger, client botLister, out io.Writer) *handler {
	return &handler{log: log, client: client, out: out}
}

func (h *handler) Execute(ctx context.Context) error {
	bots, err := ui.WithSpinnerResult("Fetching bots...", func() ([]botclient.Bot, error) {
		return h.client.ListBots(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to list bots: %w", err)
	}

	if len(bots) == 0 {
		fmt.Fprintln(h.out, "No bots found. Create one in the dashboard first.")
		return nil
	}

	t := ui.NewTable(h.out, "ID", "Name", "Status")
	for _, b := range bots {
		t.Append(b.ID, b.DisplayName, b.Status)
	}
	t.Render()
	return nil
}
