package router

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/transport/transporttest"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModule 记录收到的请求
type stubModule struct {
	name     string
	commands []Command
	consume  bool
	err      error

	gotCommands []*Request
	gotMessages []*Request
}

func (m *stubModule) Name() string        { return m.name }
func (m *stubModule) Commands() []Command { return m.commands }

func (m *stubModule) HandleCommand(_ context.Context, req *Request) error {
	m.gotCommands = append(m.gotCommands, req)
	return m.err
}

func (m *stubModule) HandleMessage(_ context.Context, req *Request) (bool, error) {
	m.gotMessages = append(m.gotMessages, req)
	return m.consume, m.err
}

type callbackModule struct {
	stubModule
	calls int
	err   error
}

func (m *callbackModule) HandleCallback(ctx context.Context, req *CallbackRequest) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return req.Answer(ctx, "")
}

func newRegistry(t *testing.T, modules ...Module) (*Registry, *transporttest.Recorder) {
	t.Helper()
	rec := transporttest.NewRecorder(transport.User{ID: 99, UserName: "pig_bot", IsBot: true})
	r := NewRegistry(rec, logger.NewNoop())
	for _, m := range modules {
		require.NoError(t, r.Register(m))
	}
	return r, rec
}

func message(text string) *transport.Message {
	return &transport.Message{ID: 10, ChatID: -1, From: transport.User{ID: 7, UserName: "hog"}, Text: text}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text      string
		cmd       string
		mention   string
		args      string
		isCommand bool
	}{
		{"/grow", "grow", "", "", true},
		{"/grow@pig_bot Boris", "grow", "pig_bot", "Boris", true},
		{"/name   Big    Boris ", "name", "", "Big Boris", true},
		{"/гров", "гров", "", "", true},
		{"grow", "", "", "", false},
		{"/", "", "", "", false},
		{"/@bot", "", "", "", false},
		{"", "", "", "", false},
	}
	for _, tt := range tests {
		cmd, mention, args, ok := ParseCommand(tt.text)
		if cmd != tt.cmd || mention != tt.mention || args != tt.args || ok != tt.isCommand {
			t.Errorf("ParseCommand(%q) = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
				tt.text, cmd, mention, args, ok, tt.cmd, tt.mention, tt.args, tt.isCommand)
		}
	}
}

func TestCommandAddressedToAnotherBot(t *testing.T) {
	m := &stubModule{name: "Pig Game", commands: []Command{{Keyword: "grow"}}}
	r, rec := newRegistry(t, m)
	ctx := context.Background()

	r.HandleMessage(ctx, message("/grow@other_bot"))
	assert.Empty(t, m.gotCommands)
	require.Len(t, m.gotMessages, 1)

	r.HandleMessage(ctx, message("/grow@Pig_Bot Boris"))
	require.Len(t, m.gotCommands, 1)
	assert.Equal(t, "Boris", m.gotCommands[0].Args)

	r.HandleMessage(ctx, message("/grow@pig_bot"))
	assert.Len(t, m.gotCommands, 2)
	// 自身用户名只查询一次
	assert.Len(t, rec.CallsOf(transporttest.MethodGetSelf), 1)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r, _ := newRegistry(t, &stubModule{name: "Pig Game"})

	err := r.Register(&stubModule{name: "Pig Game"})
	assert.ErrorIs(t, err, ErrDuplicateModule)
	assert.ErrorIs(t, r.Register(nil), ErrNilModule)
	assert.Len(t, r.Modules(), 1)
}

func TestHelpText(t *testing.T) {
	r, _ := newRegistry(t)
	if got, want := r.HelpText(), "Available commands:\nNo commands available"; got != want {
		t.Errorf("HelpText() = %q, want %q", got, want)
	}

	r, _ = newRegistry(t,
		&stubModule{name: "Reactions"},
		&stubModule{name: "Pig Game", commands: []Command{
			{Keyword: "pig", Description: "create"},
			{Keyword: "top", Description: "leaders"},
		}},
		&stubModule{name: "Extra", commands: []Command{{Keyword: "x", Description: "y"}}},
	)
	want := "Available commands:\nPig Game:\n/pig - create\n/top - leaders\n\nExtra:\n/x - y\n"
	if got := r.HelpText(); got != want {
		t.Errorf("HelpText() = %q, want %q", got, want)
	}
}

func TestHandleMessageHelp(t *testing.T) {
	pig := &stubModule{name: "Pig Game", commands: []Command{{Keyword: "help", Description: "shadowed"}}}
	r, rec := newRegistry(t, pig)

	r.HandleMessage(context.Background(), message("/help"))

	assert.Empty(t, pig.gotCommands)
	sent := rec.CallsOf(transporttest.MethodSendText)
	require.Len(t, sent, 1)
	assert.Equal(t, r.HelpText(), sent[0].Text)
	assert.Zero(t, sent[0].ReplyTo)
}

func TestDispatchCommandFirstMatchWins(t *testing.T) {
	first := &stubModule{name: "A", commands: []Command{{Keyword: "grow"}}}
	second := &stubModule{name: "B", commands: []Command{{Keyword: "grow"}}}
	r, _ := newRegistry(t, first, second)

	r.HandleMessage(context.Background(), message("/grow@pig_bot  Big   Boris"))

	require.Len(t, first.gotCommands, 1)
	assert.Empty(t, second.gotCommands)
	req := first.gotCommands[0]
	assert.Equal(t, "grow", req.Command)
	assert.Equal(t, "Big Boris", req.Args)
	assert.Equal(t, int64(7), req.Actor.UserID)
	assert.Equal(t, int64(-1), req.Actor.ChatID)
	assert.Equal(t, "hog", req.Actor.DisplayName)
	assert.Empty(t, first.gotMessages)
}

func TestUnknownCommandFallsThroughToText(t *testing.T) {
	pig := &stubModule{name: "Pig Game", commands: []Command{{Keyword: "grow"}}}
	r, _ := newRegistry(t, pig)

	r.HandleMessage(context.Background(), message("/dance now"))

	assert.Empty(t, pig.gotCommands)
	require.Len(t, pig.gotMessages, 1)
	assert.Equal(t, "dance", pig.gotMessages[0].Command)
}

func TestDispatchMessageStopsAtConsumer(t *testing.T) {
	a := &stubModule{name: "A"}
	b := &stubModule{name: "B", consume: true}
	c := &stubModule{name: "C", consume: true}
	r, _ := newRegistry(t, a, b, c)

	r.HandleMessage(context.Background(), message("hello"))

	assert.Len(t, a.gotMessages, 1)
	assert.Len(t, b.gotMessages, 1)
	assert.Empty(t, c.gotMessages)
}

func TestErrorConversion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"storage", gameerr.Storage(errors.New("conn refused"), "get creature"), service.TextStorageError},
		{"validation", gameerr.Validation(service.TextEnterName), service.TextEnterName},
		{"authorization", gameerr.Authorization(service.TextNotYourPig), service.TextNotYourPig},
		{"internal", errors.New("boom"), service.TextStorageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pig := &stubModule{name: "Pig Game", commands: []Command{{Keyword: "name"}}, err: tt.err}
			r, rec := newRegistry(t, pig)

			r.HandleMessage(context.Background(), message("/name"))

			sent := rec.CallsOf(transporttest.MethodSendText)
			require.Len(t, sent, 1)
			assert.Equal(t, tt.want, sent[0].Text)
			assert.Equal(t, 10, sent[0].ReplyTo)
		})
	}
}

func TestDispatchCallbackWithoutOwner(t *testing.T) {
	r, rec := newRegistry(t, &stubModule{name: "A"})

	r.HandleCallback(context.Background(), &transport.CallbackQuery{ID: "cb", Data: "grow:1"})

	answers := rec.CallsOf(transporttest.MethodAnswerCallback)
	require.Len(t, answers, 1)
	assert.Equal(t, service.TextUnknownCommand, answers[0].Text)
}

func TestDispatchCallbackFirstOwner(t *testing.T) {
	first := &callbackModule{stubModule: stubModule{name: "A"}}
	second := &callbackModule{stubModule: stubModule{name: "B"}}
	r, rec := newRegistry(t, &stubModule{name: "plain"}, first, second)

	r.HandleCallback(context.Background(), &transport.CallbackQuery{
		ID:      "cb",
		From:    transport.User{ID: 5},
		Message: &transport.Message{ID: 3, ChatID: -9},
	})

	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
	assert.Len(t, rec.CallsOf(transporttest.MethodAnswerCallback), 1)
}

func TestCallbackErrorAnsweredOnce(t *testing.T) {
	owner := &callbackModule{
		stubModule: stubModule{name: "A"},
		err:        gameerr.Authorization(service.TextNotYourGrow),
	}
	r, rec := newRegistry(t, owner)

	r.HandleCallback(context.Background(), &transport.CallbackQuery{ID: "cb", Message: &transport.Message{ChatID: -9}})

	answers := rec.CallsOf(transporttest.MethodAnswerCallback)
	require.Len(t, answers, 1)
	assert.Equal(t, "cb", answers[0].CallbackID)
	assert.Equal(t, service.TextNotYourGrow, answers[0].Text)
}
