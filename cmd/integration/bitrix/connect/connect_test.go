package connect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdash/botdash-cli/internal/client/botclient"
	"github.com/botdash/botdash-cli/internal/client/provisioning"
	"github.com/botdash/botdash-cli/internal/constants"
	"github.com/botdash/botdash-cli/internal/resume"
	"github.com/botdash/botdash-cli/internal/testutil"
	"github.com/botdash/botdash-cli/internal/wizard"
)

var filledFields = map[wizard.FieldName]string{
	wizard.FieldBotDisplayName: constants.TestBotName,
	wizard.FieldClientID:       "local.abc",
	wizard.FieldClientSecret:   "s3cret",
	wizard.FieldPortalDomain:   constants.TestPortal,
	wizard.FieldAccessToken:    "access",
	wizard.FieldRefreshToken:   "refresh",
}

// scriptedPrompter answers Navigate from navs and cancels once they run out.
type scriptedPrompter struct {
	navs       []navigation
	values     map[wizard.FieldName]string
	resume     bool
	selected   int
	visited    []int
	fillErr    error
	resumeAsks int
	labels     []string
}

func (p *scriptedPrompter) SelectBot(bots []botclient.Bot) (botclient.Bot, error) {
	return bots[p.selected], nil
}

func (p *scriptedPrompter) ConfirmResume() (bool, error) {
	p.resumeAsks++
	return p.resume, nil
}

func (p *scriptedPrompter) FillFields(step wizard.Step, current map[wizard.FieldName]string) (map[wizard.FieldName]string, error) {
	if p.fillErr != nil {
		return nil, p.fillErr
	}
	out := make(map[wizard.FieldName]string)
	for _, name := range step.Inputs {
		if v, ok := p.values[name]; ok {
			out[name] = v
		} else {
			out[name] = current[name]
		}
	}
	return out, nil
}

func (p *scriptedPrompter) Navigate(step wizard.Step, next string) (navigation, error) {
	p.visited = append(p.visited, step.Index)
	p.labels = append(p.labels, next)
	if len(p.navs) == 0 {
		return navCancel, nil
	}
	nav := p.navs[0]
	p.navs = p.navs[1:]
	return nav, nil
}

func nexts(n int) []navigation {
	navs := make([]navigation, n)
	for i := range navs {
		navs[i] = navNext
	}
	return navs
}

type stubProvisioner struct {
	generateCalls atomic.Int32
	saveCalls     atomic.Int32
	registerCalls atomic.Int32
	generateErrs  []error
}

func (s *stubProvisioner) GenerateLink(ctx context.Context, req provisioning.GenerateLinkRequest) (provisioning.GenerateLinkResult, error) {
	n := int(s.generateCalls.Add(1))
	if n <= len(s.generateErrs) && s.generateErrs[n-1] != nil {
		return provisioning.GenerateLinkResult{}, s.generateErrs[n-1]
	}
	return provisioning.GenerateLinkResult{IntegrationID: constants.TestIntegration, WebhookURL: constants.TestWebhookURL}, nil
}

func (s *stubProvisioner) SaveTokens(ctx context.Context, req provisioning.SaveTokensRequest) error {
	s.saveCalls.Add(1)
	return nil
}

func (s *stubProvisioner) RegisterBot(ctx context.Context, req provisioning.RegisterBotRequest) (provisioning.RegisterBotResult, error) {
	s.registerCalls.Add(1)
	return provisioning.RegisterBotResult{}, nil
}

type stubBots struct {
	bots     []botclient.Bot
	getCalls int
}

func (b *stubBots) GetBot(ctx context.Context, id string) (botclient.Bot, error) {
	b.getCalls++
	for _, bot := range b.bots {
		if bot.ID == id {
			return bot, nil
		}
	}
	return botclient.Bot{}, botclient.ErrBotNotFound
}

func (b *stubBots) ListBots(ctx context.Context) ([]botclient.Bot, error) {
	return b.bots, nil
}

func newTestStore(t *testing.T) *resume.Store {
	t.Helper()
	store, err := resume.Open(resume.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestHandler(variant string, prompts *scriptedPrompter, prov *stubProvisioner) *handler {
	return &handler{
		log:         testutil.NewTestLogger(),
		variant:     variant,
		bots:        &stubBots{bots: []botclient.Bot{{ID: constants.TestBotID, DisplayName: constants.TestBotName}}},
		provisioner: prov,
		prompts:     prompts,
	}
}

func TestExecute_GuidedRunCompletes(t *testing.T) {
	prov := &stubProvisioner{}
	prompts := &scriptedPrompter{navs: nexts(11), values: filledFields}
	store := newTestStore(t)

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{BotID: constants.TestBotID}, store))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, prompts.visited)
	assert.EqualValues(t, 1, prov.generateCalls.Load())
	assert.EqualValues(t, 1, prov.saveCalls.Load())
	assert.EqualValues(t, 1, prov.registerCalls.Load())

	id, err := store.IntegrationID()
	require.NoError(t, err)
	assert.Equal(t, constants.TestIntegration, id)
}

func TestExecute_CompactRunCompletes(t *testing.T) {
	prov := &stubProvisioner{}
	prompts := &scriptedPrompter{navs: nexts(12), values: filledFields}

	h := newTestHandler(wizard.VariantCompact, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{}, newTestStore(t)))

	assert.Len(t, prompts.visited, 12)
	assert.EqualValues(t, 1, prov.registerCalls.Load())
}

func TestExecute_MissingFieldsHoldPosition(t *testing.T) {
	prov := &stubProvisioner{}
	prompts := &scriptedPrompter{navs: nexts(5), values: map[wizard.FieldName]string{wizard.FieldBotDisplayName: "  "}}

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	h.bots = &stubBots{bots: []botclient.Bot{{ID: constants.TestBotID}}}
	require.NoError(t, h.Execute(context.Background(), Inputs{}, newTestStore(t)))

	// the fifth next is rejected and the step is shown again before cancelling
	assert.Equal(t, []int{1, 2, 3, 4, 5, 5}, prompts.visited)
	assert.Zero(t, prov.generateCalls.Load())
}

func TestExecute_BackKeepsValues(t *testing.T) {
	prov := &stubProvisioner{}
	navs := append(nexts(5), navBack, navNext, navNext)
	prompts := &scriptedPrompter{navs: navs, values: filledFields}

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{}, newTestStore(t)))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 5, 6, 7}, prompts.visited)
	assert.EqualValues(t, 1, prov.generateCalls.Load())
}

func TestExecute_LinkStepAfterGenerationOnlyMovesOn(t *testing.T) {
	prov := &stubProvisioner{}
	navs := append(nexts(6), navBack, navNext, navNext)
	prompts := &scriptedPrompter{navs: navs, values: filledFields}

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{}, newTestStore(t)))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 6, 7, 8}, prompts.visited)
	assert.Equal(t, "Generate handler URL", prompts.labels[5])
	assert.Equal(t, "Next", prompts.labels[7])
	assert.EqualValues(t, 1, prov.generateCalls.Load())
}

func TestExecute_FailedLinkIsRetried(t *testing.T) {
	rejected := &provisioning.Error{Kind: provisioning.KindRejected, Message: "Portal not reachable"}
	prov := &stubProvisioner{generateErrs: []error{rejected}}
	prompts := &scriptedPrompter{navs: nexts(7), values: filledFields}
	store := newTestStore(t)

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{}, store))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 6, 7}, prompts.visited)
	assert.EqualValues(t, 2, prov.generateCalls.Load())

	_, err := store.IntegrationID()
	assert.NoError(t, err)
}

func TestExecute_ResumeFlagStartsAfterLinkStep(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveIntegrationID(constants.TestIntegration))

	prov := &stubProvisioner{}
	prompts := &scriptedPrompter{navs: nexts(5), values: filledFields}

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	require.NoError(t, h.Execute(context.Background(), Inputs{Resume: true}, store))

	assert.Equal(t, []int{7, 8, 9, 10, 11}, prompts.visited)
	assert.Zero(t, prompts.resumeAsks)
	assert.Zero(t, prov.generateCalls.Load())
	assert.EqualValues(t, 1, prov.saveCalls.Load())
	assert.EqualValues(t, 1, prov.registerCalls.Load())
}

func TestExecute_AsksBeforeResuming(t *testing.T) {
	for _, tt := range []struct {
		name      string
		answer    bool
		firstStep int
	}{
		{name: "continue", answer: true, firstStep: 7},
		{name: "start over", answer: false, firstStep: 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, store.SaveIntegrationID(constants.TestIntegration))
			prompts := &scriptedPrompter{resume: tt.answer}

			h := newTestHandler(wizard.VariantGuided, prompts, &stubProvisioner{})
			require.NoError(t, h.Execute(context.Background(), Inputs{}, store))

			assert.Equal(t, 1, prompts.resumeAsks)
			assert.Equal(t, []int{tt.firstStep}, prompts.visited)
		})
	}
}

func TestExecute_UserAbortCancels(t *testing.T) {
	prov := &stubProvisioner{}
	prompts := &scriptedPrompter{navs: nexts(4), values: filledFields, fillErr: huh.ErrUserAborted}

	h := newTestHandler(wizard.VariantGuided, prompts, prov)
	assert.NoError(t, h.Execute(context.Background(), Inputs{}, newTestStore(t)))
	assert.Equal(t, []int{1, 2, 3, 4}, prompts.visited)
}

func TestExecute_PromptFailureIsReturned(t *testing.T) {
	prompts := &scriptedPrompter{navs: nexts(4), fillErr: errors.New("tty closed")}

	h := newTestHandler(wizard.VariantGuided, prompts, &stubProvisioner{})
	err := h.Execute(context.Background(), Inputs{}, newTestStore(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty closed")
}

func TestExecute_UnknownVariant(t *testing.T) {
	h := newTestHandler("wide", &scriptedPrompter{}, &stubProvisioner{})
	err := h.Execute(context.Background(), Inputs{}, newTestStore(t))
	assert.ErrorContains(t, err, "unknown wizard variant")
}

func TestResolveBot(t *testing.T) {
	support := botclient.Bot{ID: constants.TestBotID, DisplayName: constants.TestBotName}
	sales := botclient.Bot{ID: "bot-7", DisplayName: "Sales Bot"}

	t.Run("by id", func(t *testing.T) {
		bots := &stubBots{bots: []botclient.Bot{support, sales}}
		h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{}, &stubProvisioner{})
		h.bots = bots

		got, err := h.resolveBot(context.Background(), "bot-7")
		require.NoError(t, err)
		assert.Equal(t, sales, got)
		assert.Equal(t, 1, bots.getCalls)
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{}, &stubProvisioner{})
		_, err := h.resolveBot(context.Background(), "missing")
		assert.ErrorIs(t, err, botclient.ErrBotNotFound)
	})

	t.Run("single bot is picked without asking", func(t *testing.T) {
		h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{selected: 99}, &stubProvisioner{})
		got, err := h.resolveBot(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, support, got)
	})

	t.Run("several bots are offered", func(t *testing.T) {
		h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{selected: 1}, &stubProvisioner{})
		h.bots = &stubBots{bots: []botclient.Bot{support, sales}}
		got, err := h.resolveBot(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, sales, got)
	})

	t.Run("empty workspace", func(t *testing.T) {
		h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{}, &stubProvisioner{})
		h.bots = &stubBots{}
		_, err := h.resolveBot(context.Background(), "")
		assert.ErrorIs(t, err, errNoBots)
	})
}

func TestValidateInputs(t *testing.T) {
	h := newTestHandler(wizard.VariantGuided, &scriptedPrompter{}, &stubProvisioner{})
	assert.NoError(t, h.ValidateInputs(Inputs{}))
	assert.NoError(t, h.ValidateInputs(Inputs{BotID: constants.TestBotID}))
	assert.ErrorContains(t, h.ValidateInputs(Inputs{BotID: "bot 42"}), "--bot-id")
}

func TestNextLabel(t *testing.T) {
	reg, err := wizard.NewRegistry(wizard.VariantGuided)
	require.NoError(t, err)

	link, _ := reg.StepFor(wizard.ActionGenerateLink)
	save, _ := reg.StepFor(wizard.ActionSaveAndRegister)
	first, _ := reg.Step(1)

	linked := wizard.State{IntegrationID: constants.TestIntegration, WebhookURL: constants.TestWebhookURL}

	assert.Equal(t, "Generate handler URL", nextLabel(link, wizard.State{}, false))
	assert.Equal(t, "Next", nextLabel(link, linked, false))
	assert.Equal(t, "Save tokens and register", nextLabel(save, linked, false))
	assert.Equal(t, "Next", nextLabel(first, wizard.State{}, false))
	assert.Equal(t, "Finish", nextLabel(first, linked, true))
}
