package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI 按方法名返回固定结果并记录表单参数
type fakeAPI struct {
	mu       sync.Mutex
	requests map[string][]map[string]string
	results  map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	method := parts[len(parts)-1]
	_ = r.ParseForm()

	form := make(map[string]string)
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.requests[method] = append(f.requests[method], form)
	result, ok := f.results[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: unexpected method"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":` + result + `}`))
}

func (f *fakeAPI) last(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[method]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

func newTestTelegram(t *testing.T) (*Telegram, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{
		requests: make(map[string][]map[string]string),
		results: map[string]string{
			"getMe":               `{"id":99,"is_bot":true,"first_name":"Pig","username":"pig_bot"}`,
			"sendMessage":         `{"message_id":555,"date":0,"chat":{"id":-100,"type":"group"}}`,
			"editMessageText":     `{"message_id":555,"date":0,"chat":{"id":-100,"type":"group"}}`,
			"deleteMessage":       `true`,
			"answerCallbackQuery": `true`,
			"setMessageReaction":  `true`,
			"getChatMember":       `{"user":{"id":99,"is_bot":true,"first_name":"Pig"},"status":"administrator"}`,
			"getUpdates":          `[
				{"update_id":10,"message":{"message_id":1,"date":0,"chat":{"id":-100,"type":"group"},
					"from":{"id":7,"is_bot":false,"first_name":"Ivan","username":"hog"},"text":"/grow",
					"reply_to_message":{"message_id":4,"date":0,"chat":{"id":-100,"type":"group"}}}},
				{"update_id":11,"callback_query":{"id":"cb1","from":{"id":8,"is_bot":false,"first_name":"Olga"},
					"data":"grow:8","message":{"message_id":2,"date":0,"chat":{"id":-100,"type":"group"}}}}
			]`,
		},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tg, err := NewTelegram(&Config{Token: "123:abc", APIEndpoint: srv.URL + "/bot%s/%s"}, logger.NewNoop())
	require.NoError(t, err)
	return tg, api
}

func TestNewTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegram(&Config{}, nil)
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestTelegramGetSelf(t *testing.T) {
	tg, _ := newTestTelegram(t)

	self, err := tg.GetSelf(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(99), self.ID)
	assert.Equal(t, "pig_bot", self.UserName)
}

func TestTelegramSendText(t *testing.T) {
	tg, api := newTestTelegram(t)

	id, err := tg.SendText(context.Background(), -100, "hi", SendOptions{
		ReplyTo:  42,
		Keyboard: Row(Button{Text: "go", Data: "grow:7"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 555, id)

	form := api.last("sendMessage")
	assert.Equal(t, "-100", form["chat_id"])
	assert.Equal(t, "hi", form["text"])
	assert.Equal(t, "42", form["reply_to_message_id"])
	assert.Contains(t, form["reply_markup"], `"callback_data":"grow:7"`)
}

func TestTelegramEditWithoutKeyboard(t *testing.T) {
	tg, api := newTestTelegram(t)

	require.NoError(t, tg.EditText(context.Background(), -100, 555, "new", nil))
	form := api.last("editMessageText")
	assert.Equal(t, "555", form["message_id"])
	assert.Equal(t, "new", form["text"])
	assert.Empty(t, form["reply_markup"])
}

func TestTelegramSetReaction(t *testing.T) {
	tg, api := newTestTelegram(t)

	require.NoError(t, tg.SetReaction(context.Background(), -100, 3, "🤡"))
	form := api.last("setMessageReaction")
	assert.Equal(t, "-100", form["chat_id"])
	assert.Equal(t, "3", form["message_id"])

	var reaction []reactionType
	require.NoError(t, json.Unmarshal([]byte(form["reaction"]), &reaction))
	assert.Equal(t, []reactionType{{Type: "emoji", Emoji: "🤡"}}, reaction)
}

func TestTelegramGetChatMember(t *testing.T) {
	tg, _ := newTestTelegram(t)

	m, err := tg.GetChatMember(context.Background(), -100, 99)
	require.NoError(t, err)
	assert.True(t, m.IsAdmin())
	assert.Equal(t, int64(99), m.UserID)
}

func TestTelegramAPIError(t *testing.T) {
	tg, api := newTestTelegram(t)
	api.mu.Lock()
	delete(api.results, "deleteMessage")
	api.mu.Unlock()

	err := tg.DeleteMessage(context.Background(), -100, 1)
	assert.Error(t, err)
}

func TestTelegramCanceledContext(t *testing.T) {
	tg, api := newTestTelegram(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tg.AnswerCallback(ctx, "cb", ""), context.Canceled)
	assert.Nil(t, api.last("answerCallbackQuery"))
}

func TestTelegramFetch(t *testing.T) {
	tg, api := newTestTelegram(t)

	updates, err := tg.Fetch(context.Background(), 10, 50, 0)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	assert.Equal(t, "10", api.last("getUpdates")["offset"])

	msg := updates[0].Message
	require.NotNil(t, msg)
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, "hog", msg.From.DisplayName())
	assert.Equal(t, "/grow", msg.Text)
	assert.Equal(t, 4, msg.ReplyToID)

	cb := updates[1].Callback
	require.NotNil(t, cb)
	assert.Equal(t, "grow:8", cb.Data)
	assert.Equal(t, 2, cb.Message.ID)
	assert.Equal(t, "Olga", cb.From.DisplayName())
}
