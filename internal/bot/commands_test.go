package bot_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"currency-bot/internal"
	"currency-bot/internal/bot"
	"currency-bot/internal/mock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const usageMarker = "Ошибка в использовании команды"

func fixture(t *testing.T) *internal.RateSnapshot {
	t.Helper()
	snap, err := internal.NewRateSnapshot(
		internal.Date{Time: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		[]internal.CurrencyRate{
			{Code: "USD", Name: "Доллар США", Nominal: 1, UnitRate: decimal.RequireFromString("90.00"), TotalRate: decimal.RequireFromString("90.00")},
			{Code: "EUR", Name: "Евро", Nominal: 1, UnitRate: decimal.RequireFromString("100.00"), TotalRate: decimal.RequireFromString("100.00")},
			{Code: "JPY", Name: "Японских иен", Nominal: 100, UnitRate: decimal.RequireFromString("0.607531"), TotalRate: decimal.RequireFromString("60.7531")},
		},
	)
	require.NoError(t, err)
	return snap
}

func TestCommands_StaticTexts(t *testing.T) {
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	audit.EXPECT().LogCommand(testifymock.Anything, "start", internal.CommandOK, (*internal.Date)(nil)).Return(nil).Once()
	audit.EXPECT().LogCommand(testifymock.Anything, "help", internal.CommandOK, (*internal.Date)(nil)).Return(nil).Once()
	audit.EXPECT().LogCommand(testifymock.Anything, "weather", internal.CommandUsage, (*internal.Date)(nil)).Return(nil).Once()

	c := bot.NewCommands(rates, audit, zap.NewNop())

	start := c.Handle(context.Background(), "start", nil)
	assert.Contains(t, start, "Привет")
	assert.Contains(t, start, "/rates")
	assert.Contains(t, start, "/exchange")

	help := c.Handle(context.Background(), "/help", nil)
	assert.Contains(t, help, "Помощь по командам")
	assert.Contains(t, help, "/exchange USD RUB 10")

	assert.Equal(t, help, c.Handle(context.Background(), "weather", []string{"today"}))
	rates.AssertNotCalled(t, "GetOrRefresh", testifymock.Anything)
}

func TestCommands_Rates(t *testing.T) {
	snap := fixture(t)
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	rates.EXPECT().GetOrRefresh(testifymock.Anything).Return(snap, nil).Once()
	audit.EXPECT().LogCommand(testifymock.Anything, "rates", internal.CommandOK, &snap.Date).Return(nil).Once()

	text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "rates", nil)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "*Актуальные курсы валют на 18.10.2026:*", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "- 1 *USD/RUB* = `90.0000`₽", lines[2])
	assert.Equal(t, "- 1 *EUR/RUB* = `100.0000`₽", lines[3])
	assert.Equal(t, "- 1 *JPY/RUB* = `0.607531`₽", lines[4])
}

func TestFormatRates_WithoutDate(t *testing.T) {
	snap, err := internal.NewRateSnapshot(internal.Date{}, []internal.CurrencyRate{
		{Code: "USD", Nominal: 1, UnitRate: decimal.RequireFromString("90.1234")},
		{Code: "CNY", Nominal: 1, UnitRate: decimal.RequireFromString("12.34")},
	})
	require.NoError(t, err)

	assert.Equal(t, "*Актуальные курсы валют:*\n\n- 1 *USD/RUB* = `90.1234`₽\n- 1 *CNY/RUB* = `12.3400`₽\n", bot.FormatRates(snap))
}

func TestCommands_RatesUnavailable(t *testing.T) {
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	rates.EXPECT().GetOrRefresh(testifymock.Anything).
		Return(nil, &internal.FetchError{URL: "https://cbr.ru", StatusCode: 502}).
		Once()
	audit.EXPECT().LogCommand(testifymock.Anything, "rates", internal.CommandError, (*internal.Date)(nil)).Return(nil).Once()

	text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "rates", nil)

	assert.Contains(t, text, "недоступны")
	assert.NotContains(t, text, "502")
	assert.NotContains(t, text, "cbr.ru")
}

func TestCommands_Exchange(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"to base", []string{"USD", "RUB", "10"}, "10 USD в RUB: `900.00`"},
		{"from base", []string{"RUB", "USD", "100"}, "100 RUB в USD: `1.11`"},
		{"cross", []string{"USD", "EUR", "10"}, "10 USD в EUR: `9.00`"},
		{"lower case and comma", []string{"usd", "eur", "10,5"}, "10.5 USD в EUR: `9.45`"},
		{"same currency", []string{"rub", "rub", "5"}, "5 RUB в RUB: `5.00`"},
		{"per unit rate", []string{"JPY", "RUB", "1000"}, "1000 JPY в RUB: `607.53`"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := fixture(t)
			rates := mock.NewMockSnapshotProvider(t)
			audit := mock.NewMockCommandAuditLogger(t)
			rates.EXPECT().GetOrRefresh(testifymock.Anything).Return(snap, nil).Once()
			audit.EXPECT().LogCommand(testifymock.Anything, "exchange", internal.CommandOK, &snap.Date).Return(nil).Once()

			text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "exchange", tc.args)

			assert.Equal(t, tc.want, text)
		})
	}
}

func TestCommands_ExchangeUsage(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"two args", []string{"USD", "RUB"}},
		{"four args", []string{"USD", "RUB", "10", "20"}},
		{"word amount", []string{"USD", "RUB", "ten"}},
		{"exponent amount", []string{"USD", "RUB", "1e3"}},
		{"malformed code", []string{"US", "RUB", "10"}},
		{"unknown from", []string{"XXX", "RUB", "10"}},
		{"unknown to", []string{"USD", "ZZZ", "10"}},
		{"zero amount", []string{"USD", "RUB", "0"}},
		{"negative amount", []string{"USD", "RUB", "-5"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rates := mock.NewMockSnapshotProvider(t)
			audit := mock.NewMockCommandAuditLogger(t)
			rates.EXPECT().GetOrRefresh(testifymock.Anything).Return(fixture(t), nil).Maybe()
			audit.EXPECT().LogCommand(testifymock.Anything, "exchange", internal.CommandUsage, testifymock.Anything).Return(nil).Once()

			var text string
			require.NotPanics(t, func() {
				text = bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "exchange", tc.args)
			})

			assert.Contains(t, text, usageMarker)
			assert.Contains(t, text, "/exchange USD RUB 10")
		})
	}
}

func TestCommands_ExchangeUnavailable(t *testing.T) {
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	rates.EXPECT().GetOrRefresh(testifymock.Anything).
		Return(nil, &internal.ParseError{Index: -1, Err: errors.New("EOF")}).
		Once()
	audit.EXPECT().LogCommand(testifymock.Anything, "exchange", internal.CommandError, (*internal.Date)(nil)).Return(nil).Once()

	text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "exchange", []string{"USD", "RUB", "10"})

	assert.Contains(t, text, "недоступны")
	assert.NotContains(t, text, "EOF")
}

func TestCommands_AuditFailureDoesNotChangeReply(t *testing.T) {
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	audit.EXPECT().LogCommand(testifymock.Anything, "start", internal.CommandOK, (*internal.Date)(nil)).
		Return(errors.New("db down")).
		Once()

	text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "start", nil)

	assert.Contains(t, text, "Привет")
}

func TestCommands_ExchangeRejectsExponentAmount(t *testing.T) {
	rates := mock.NewMockSnapshotProvider(t)
	audit := mock.NewMockCommandAuditLogger(t)
	audit.EXPECT().LogCommand(testifymock.Anything, "exchange", internal.CommandUsage, (*internal.Date)(nil)).Return(nil).Once()

	text := bot.NewCommands(rates, audit, zap.NewNop()).Handle(context.Background(), "exchange", []string{"RUB", "USD", "1e3000000"})

	assert.Contains(t, text, usageMarker)
	rates.AssertNotCalled(t, "GetOrRefresh", testifymock.Anything)
}
