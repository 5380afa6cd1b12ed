package bot_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"currency-bot/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	command string
	args    []string
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []call
	reply string
	panic bool
}

func (h *fakeHandler) Handle(_ context.Context, command string, args []string) string {
	h.mu.Lock()
	h.calls = append(h.calls, call{command: command, args: args})
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.reply
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func commandUpdate(text string) tgbotapi.Update {
	cmdLen := strings.IndexByte(text, ' ')
	if cmdLen < 0 {
		cmdLen = len(text)
	}
	return tgbotapi.Update{
		UpdateID: 7,
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: 42, Type: "private"},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
		},
	}
}

func TestDispatcher_ParsesCommandAndReplies(t *testing.T) {
	handler := &fakeHandler{reply: "10 USD в RUB: `900.00`"}
	sender := &fakeSender{}

	bot.NewDispatcher(handler, sender, zap.NewNop()).
		Dispatch(context.Background(), commandUpdate("/exchange  usd rub   10"))

	require.Len(t, handler.calls, 1)
	assert.Equal(t, "exchange", handler.calls[0].command)
	assert.Equal(t, []string{"usd", "rub", "10"}, handler.calls[0].args)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, handler.reply, sender.sent[0].Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, sender.sent[0].ParseMode)
}

func TestDispatcher_StripsBotMention(t *testing.T) {
	handler := &fakeHandler{reply: "ok"}

	bot.NewDispatcher(handler, &fakeSender{}, zap.NewNop()).
		Dispatch(context.Background(), commandUpdate("/rates@rates_bot"))

	require.Len(t, handler.calls, 1)
	assert.Equal(t, "rates", handler.calls[0].command)
	assert.Empty(t, handler.calls[0].args)
}

func TestDispatcher_IgnoresNonCommands(t *testing.T) {
	handler := &fakeHandler{reply: "ok"}
	sender := &fakeSender{}
	d := bot.NewDispatcher(handler, sender, zap.NewNop())

	d.Dispatch(context.Background(), tgbotapi.Update{UpdateID: 1})
	d.Dispatch(context.Background(), tgbotapi.Update{
		UpdateID: 2,
		Message:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "привет"},
	})

	assert.Empty(t, handler.calls)
	assert.Empty(t, sender.sent)
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	handler := &fakeHandler{panic: true}
	sender := &fakeSender{}

	assert.NotPanics(t, func() {
		bot.NewDispatcher(handler, sender, zap.NewNop()).
			Dispatch(context.Background(), commandUpdate("/rates"))
	})
	assert.Empty(t, sender.sent)
}

func TestDispatcher_SendErrorIsNotFatal(t *testing.T) {
	handler := &fakeHandler{reply: "ok"}
	sender := &fakeSender{err: errors.New("chat not found")}

	assert.NotPanics(t, func() {
		bot.NewDispatcher(handler, sender, zap.NewNop()).
			Dispatch(context.Background(), commandUpdate("/help"))
	})
	assert.Len(t, handler.calls, 1)
}

// fakeBotAPI serves getMe, one /start update and records sendMessage texts.
type fakeBotAPI struct {
	served atomic.Bool
	mu     sync.Mutex
	texts  []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Rates","username":"rates_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		if f.served.CompareAndSwap(false, true) {
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":1,"message":{"message_id":5,"date":0,`+
				`"chat":{"id":42,"type":"private"},"text":"/start",`+
				`"entities":[{"type":"bot_command","offset":0,"length":6}]}}]}`)
			return
		}
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.texts = append(f.texts, r.PostForm.Get("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":6,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBotAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func TestTelegram_RunAnswersUntilCancelled(t *testing.T) {
	api := &fakeBotAPI{}
	server := httptest.NewServer(api)
	defer server.Close()

	handler := &fakeHandler{reply: "привет"}
	tg, err := bot.NewTelegramWithEndpoint("123:abc", server.URL+"/bot%s/%s", handler, 2, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "rates_bot", tg.Username())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tg.Run(ctx) }()

	require.Eventually(t, func() bool { return len(api.sentTexts()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"привет"}, api.sentTexts())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewTelegram_BadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer server.Close()

	_, err := bot.NewTelegramWithEndpoint("bad", server.URL+"/bot%s/%s", &fakeHandler{}, 1, zap.NewNop())

	assert.Error(t, err)
}

type blockingHandler struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (h *blockingHandler) Handle(context.Context, string, []string) string {
	h.calls.Add(1)
	h.started <- struct{}{}
	<-h.release
	return ""
}

func TestDispatcher_ServeStopsWaitingForWorkerOnCancel(t *testing.T) {
	handler := &blockingHandler{started: make(chan struct{}, 2), release: make(chan struct{})}
	d := bot.NewDispatcher(handler, &fakeSender{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		d.Serve(ctx, updates, 1)
		close(done)
	}()

	updates <- commandUpdate("/rates")
	<-handler.started

	// the only worker is busy, so this update waits for a slot
	updates <- commandUpdate("/help")
	cancel()

	close(handler.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, int32(1), handler.calls.Load())
}

func TestDispatcher_ServeReturnsWhenUpdatesClose(t *testing.T) {
	handler := &fakeHandler{reply: "ok"}
	sender := &fakeSender{}
	d := bot.NewDispatcher(handler, sender, zap.NewNop())

	updates := make(chan tgbotapi.Update, 3)
	updates <- commandUpdate("/start")
	updates <- commandUpdate("/help")
	updates <- commandUpdate("/rates")
	close(updates)

	d.Serve(context.Background(), updates, 1)

	assert.Len(t, handler.calls, 3)
	assert.Len(t, sender.sent, 3)
}
