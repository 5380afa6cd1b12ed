package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"currency-bot/internal"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const startText = "👋 *Привет!*\n\n" +
	"Я твой помощник для показа актуальных курсов валют. 💱\n\n" +
	"📈 *Команды для использования:*\n" +
	"1. /rates — узнать курс всех валют.\n" +
	"2. /exchange — конвертировать одну валюту в другую.\n\n" +
	"Если у тебя есть вопросы по использованию команд,\n" +
	"используй команду /help 😊"

const exchangeHowTo = "`1`. Первый аргумент: укажите валюту, которую хотите конвертировать.\n" +
	"`2`. Второй аргумент: укажите валюту, в которую хотите конвертировать.\n" +
	"`3`. Третий аргумент: укажите сумму, которую хотите конвертировать.\n\n" +
	"```Пример\n" +
	"/exchange USD RUB 10```"

const helpText = "*Помощь по командам:*\n\n" +
	"`1️⃣.` Введи команду /rates для показа актуального курса валют\n\n" +
	"`2️⃣.` *Как правильно использовать команду /exchange:*\n" +
	exchangeHowTo

const exchangeUsageText = "Ошибка в использовании команды\n/exchange\n\n" +
	"Возможно, произошла ошибка при указании аргументов команды.\n\n" +
	"*Как правильно использовать команду /exchange:*\n\n" +
	exchangeHowTo

const unavailableText = "Курсы валют сейчас недоступны 😔\nПопробуйте повторить запрос позже."

const rateDisplayPlaces = 4

type reply struct {
	text   string
	status internal.CommandStatus
	date   *internal.Date
}

// Commands turns a parsed chat command into reply text. It never returns
// internal error details to the user.
type Commands struct {
	rates  internal.SnapshotProvider
	audit  internal.CommandAuditLogger
	logger *zap.Logger
}

func NewCommands(rates internal.SnapshotProvider, audit internal.CommandAuditLogger, logger *zap.Logger) *Commands {
	if audit == nil {
		audit = internal.NopAuditLogger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commands{
		rates:  rates,
		audit:  audit,
		logger: logger.With(zap.String("component", "commands")),
	}
}

// Handle answers command (without the leading slash) called with args.
// Commands it does not know get the help text.
func (c *Commands) Handle(ctx context.Context, command string, args []string) string {
	command = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(command), "/"))

	var r reply
	switch command {
	case "start":
		r = reply{text: startText, status: internal.CommandOK}
	case "help":
		r = reply{text: helpText, status: internal.CommandOK}
	case "rates":
		r = c.listRates(ctx)
	case "exchange":
		r = c.exchange(ctx, args)
	default:
		r = reply{text: helpText, status: internal.CommandUsage}
	}

	if err := c.audit.LogCommand(ctx, command, r.status, r.date); err != nil {
		c.logger.Warn("audit command", zap.String("command", command), zap.Error(err))
	}
	return r.text
}

func (c *Commands) listRates(ctx context.Context) reply {
	snap, err := c.rates.GetOrRefresh(ctx)
	if err != nil {
		c.logger.Error("get rates", zap.Error(err))
		return reply{text: unavailableText, status: internal.CommandError}
	}
	return reply{text: FormatRates(snap), status: internal.CommandOK, date: &snap.Date}
}

// FormatRates renders one "1 CODE/RUB = rate" line per currency in feed order.
func FormatRates(snap *internal.RateSnapshot) string {
	var b strings.Builder
	if d := snap.Date.Display(); d != "" {
		fmt.Fprintf(&b, "*Актуальные курсы валют на %s:*\n\n", d)
	} else {
		b.WriteString("*Актуальные курсы валют:*\n\n")
	}
	for _, r := range snap.Rates {
		fmt.Fprintf(&b, "- 1 *%s/%s* = `%s`₽\n", r.Code, internal.RUB, formatRate(r.UnitRate))
	}
	return b.String()
}

// formatRate keeps at least the four places the feed publishes.
func formatRate(d decimal.Decimal) string {
	if d.Exponent() < -rateDisplayPlaces {
		return d.String()
	}
	return d.StringFixed(rateDisplayPlaces)
}

func (c *Commands) exchange(ctx context.Context, args []string) reply {
	usage := reply{text: exchangeUsageText, status: internal.CommandUsage}

	if len(args) != 3 {
		c.logger.Debug("exchange: wrong argument count", zap.Int("args", len(args)))
		return usage
	}

	from, err := internal.NewCurrencyCode(args[0])
	if err != nil {
		c.logger.Debug("exchange: bad source code", zap.Error(err))
		return usage
	}
	to, err := internal.NewCurrencyCode(args[1])
	if err != nil {
		c.logger.Debug("exchange: bad target code", zap.Error(err))
		return usage
	}
	amount, err := internal.ParseAmount(args[2])
	if err != nil {
		c.logger.Debug("exchange: bad amount", zap.String("amount", args[2]), zap.Error(err))
		return usage
	}

	snap, err := c.rates.GetOrRefresh(ctx)
	if err != nil {
		c.logger.Error("get rates", zap.Error(err))
		return reply{text: unavailableText, status: internal.CommandError}
	}
	usage.date = &snap.Date

	result, err := internal.Convert(snap, from, to, amount)
	var unknown *internal.UnknownCurrencyError
	switch {
	case err == nil:
	case errors.As(err, &unknown):
		c.logger.Debug("exchange: unknown currency", zap.String("code", unknown.Code.String()))
		return usage
	case errors.Is(err, internal.ErrInvalidAmount):
		c.logger.Debug("exchange: non-positive amount", zap.String("amount", amount.String()))
		return usage
	default:
		c.logger.Error("convert", zap.Error(err))
		return reply{text: unavailableText, status: internal.CommandError, date: &snap.Date}
	}

	return reply{
		text:   fmt.Sprintf("%s %s в %s: `%s`", amount.String(), from, to, result.StringFixed(2)),
		status: internal.CommandOK,
		date:   &snap.Date,
	}
}
