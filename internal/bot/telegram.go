package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultWorkers = 16
	pollTimeout    = 60
)

type CommandHandler interface {
	Handle(ctx context.Context, command string, args []string) string
}

// Sender is the part of tgbotapi.BotAPI used to answer.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dispatcher answers a single update. A panic while handling is recovered and
// logged.
type Dispatcher struct {
	handler CommandHandler
	sender  Sender
	logger  *zap.Logger
}

func NewDispatcher(handler CommandHandler, sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handler: handler, sender: sender, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	log := d.logger.With(
		zap.Int("update_id", update.UpdateID),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("command", msg.Command()),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()

	text := d.handler.Handle(ctx, msg.Command(), strings.Fields(msg.CommandArguments()))
	if text == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := d.sender.Send(out); err != nil {
		log.Warn("send reply", zap.Error(err))
		return
	}
	log.Debug("replied")
}

// Telegram long-polls the Bot API and hands every update to the dispatcher on
// its own goroutine, at most workers at a time.
type Telegram struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
	workers    int
	logger     *zap.Logger
}

func NewTelegram(token string, handler CommandHandler, workers int, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return newTelegram(api, handler, workers, logger), nil
}

func NewTelegramWithEndpoint(token, endpoint string, handler CommandHandler, workers int, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return newTelegram(api, handler, workers, logger), nil
}

func newTelegram(api *tgbotapi.BotAPI, handler CommandHandler, workers int, logger *zap.Logger) *Telegram {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "telegram"))
	return &Telegram{
		api:        api,
		dispatcher: NewDispatcher(handler, api, logger),
		workers:    workers,
		logger:     logger,
	}
}

func (t *Telegram) Username() string { return t.api.Self.UserName }

// Run polls until ctx is done, then waits for in-flight commands.
func (t *Telegram) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := t.api.GetUpdatesChan(u)

	t.logger.Info("polling updates", zap.String("bot", t.Username()), zap.Int("workers", t.workers))
	t.dispatcher.Serve(ctx, updates, t.workers)
	t.api.StopReceivingUpdates()
	return nil
}

// Serve dispatches updates on their own goroutines, at most workers at a
// time, until ctx is done or updates is closed. Waiting for a free worker
// also stops on ctx. Serve returns after in-flight updates finish.
func (d *Dispatcher) Serve(ctx context.Context, updates <-chan tgbotapi.Update, workers int) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	sem := semaphore.NewWeighted(int64(workers))

	var g errgroup.Group
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				d.logger.Warn("update dropped on shutdown", zap.Int("update_id", update.UpdateID))
				return
			}
			g.Go(func() error {
				defer sem.Release(1)
				d.Dispatch(ctx, update)
				return nil
			})
		}
	}
}
