package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/usecase"
)

// Refresher is the slice of the monitor the handlers need for /refresh.
type Refresher interface {
	RefreshRecords(ctx context.Context, ids []string) []domain.FlightRecord
}

type Handlers struct {
	flights   *usecase.FlightUsecase
	refresher Refresher
	logger    *zap.Logger
}

func NewHandlers(flights *usecase.FlightUsecase, refresher Refresher, logger *zap.Logger) *Handlers {
	return &Handlers{flights: flights, refresher: refresher, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
		return
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start":
		h.reply(api, chatID, "Welcome to flightwatch.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "watch":
		origin, dest, date, threshold, err := ParseWatchArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /watch <ORIG> <DEST> <YYYY-MM-DD> [threshold]")
			return
		}
		record, err := h.flights.Register(ctx, userID, chatID, origin, dest, date, threshold)
		if err != nil {
			h.logger.Warn("watch failed", zap.Int64("user_id", userID), zap.Error(err))
			h.reply(api, chatID, errorMessage(err))
			return
		}
		h.reply(api, chatID, "Now monitoring:\n"+formatRecord(record))
	case "list":
		records := h.flights.ListByOwner(userID)
		if len(records) == 0 {
			h.reply(api, chatID, "No monitored flights yet. Use /watch to add one.")
			return
		}
		var b strings.Builder
		b.WriteString("Your monitored flights:\n")
		for _, record := range records {
			b.WriteString(formatRecord(record) + "\n")
		}
		h.reply(api, chatID, b.String())
	case "price":
		origin, dest, date, err := ParseRouteArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /price <ORIG> <DEST> <YYYY-MM-DD>")
			return
		}
		price, source, err := h.flights.QuotePrice(ctx, origin, dest, date)
		if err != nil {
			h.reply(api, chatID, errorMessage(err))
			return
		}
		label := "live"
		if source == "synthetic" {
			label = "estimated"
		}
		h.reply(api, chatID, fmt.Sprintf("%s → %s on %s: %s (%s)", strings.ToUpper(origin), strings.ToUpper(dest), date, formatPrice(price), label))
	case "refresh":
		records := h.flights.ListByOwner(userID)
		if len(records) == 0 {
			h.reply(api, chatID, "No monitored flights to refresh.")
			return
		}
		ids := make([]string, 0, len(records))
		for _, record := range records {
			ids = append(ids, record.ID)
		}
		updated := h.refresher.RefreshRecords(ctx, ids)
		var b strings.Builder
		fmt.Fprintf(&b, "Refreshed %d flight(s):\n", len(updated))
		for _, record := range updated {
			b.WriteString(formatRecord(record) + "\n")
		}
		h.reply(api, chatID, b.String())
	case "alert":
		id, price, err := ParseAlertArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /alert <id> <price>")
			return
		}
		if err := h.flights.SetThreshold(ctx, userID, id, price); err != nil {
			h.reply(api, chatID, errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf("Alert set: you will be notified when %s drops to %s or below.", id, formatPrice(price)))
	case "unwatch":
		id, err := ParseRecordID(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /unwatch <id>")
			return
		}
		record, err := h.flights.Delete(ctx, userID, id)
		if err != nil {
			h.reply(api, chatID, errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf("Stopped monitoring %s → %s (%s).", record.Origin, record.Dest, record.Date))
	case "stats":
		stats := h.flights.Stats(userID)
		h.reply(api, chatID, fmt.Sprintf(
			"Monitored flights: %d total, %d yours.\nPrice checks so far: %d.",
			stats.TotalRecords, stats.OwnerRecords, stats.TotalChecks,
		))
	default:
		h.reply(api, chatID, "Unknown command. Use /help.")
	}
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return "You are already monitoring this flight."
	case errors.Is(err, domain.ErrNotFound):
		return "Flight not found. Use /list to see your ids."
	case errors.Is(err, domain.ErrForbidden):
		return "That flight belongs to another user."
	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date. Use YYYY-MM-DD and a date that is not in the past."
	case errors.Is(err, domain.ErrInvalidRoute):
		return "Airports must be 3-letter IATA codes, e.g. MEX or CUN."
	case errors.Is(err, domain.ErrInvalidAmount):
		return "The price must be a positive number."
	default:
		return "Something went wrong. Please try again."
	}
}
