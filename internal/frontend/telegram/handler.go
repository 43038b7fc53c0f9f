package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	welcomeMsg      = "Welcome to MovieScout! Send a movie title to search OMDb."
	resetMsg        = "Search cleared. Send a title to start over."
	unknownCmdMsg   = "Unknown command. Send a movie title to search."
	staleMsg        = "These results are out of date. Send the title again to search."
	noResultsMsg    = "No movies found."

	// Callback data is "<kind>:<serial>" or "det:<serial>:<index>".
	cbDetail = "det"
	cbMore   = "more"
	cbRetry  = "retry"

	maxButtonLabel = 30 // max characters in inline keyboard button label
)

// handleMessage processes an incoming text message. Any text other than a command
// starts a new search, even when it repeats the current title.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch {
	case text == "/start":
		b.sendText(chatID, welcomeMsg+"\n"+search.MsgPrompt+".")
		return
	case text == "/reset":
		b.sessions.reset(chatID)
		b.sendText(chatID, resetMsg)
		return
	case strings.HasPrefix(text, "/"):
		b.sendText(chatID, unknownCmdMsg)
		return
	}

	s := b.sessions.get(chatID)
	s.mu.Lock()
	s.ctrl.SetQuery("")
	req, ok := s.ctrl.SetQuery(text)
	serial := b.sessions.nextSerial(chatID)
	s.serial = serial
	s.mu.Unlock()

	if !ok {
		b.sendText(chatID, search.MsgPrompt+".")
		return
	}

	b.typing(chatID)
	b.runPage(ctx, chatID, s, serial, req)
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	if _, err := b.out.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Debug("failed to acknowledge callback", slog.String("error", err.Error()))
	}

	if !b.sessions.isAllowed(userID) {
		return
	}

	kind, serial, index, ok := parseCallback(cq.Data)
	if !ok {
		return
	}

	s := b.sessions.get(chatID)
	s.mu.Lock()
	if serial != s.serial {
		s.mu.Unlock()
		b.sendText(chatID, staleMsg)
		return
	}

	switch kind {
	case cbMore, cbRetry:
		var req search.PageRequest
		if kind == cbMore {
			req, ok = s.ctrl.LoadMore()
		} else {
			req, ok = s.ctrl.Retry()
		}
		more := s.ctrl.More()
		s.mu.Unlock()

		if !ok {
			if !more {
				b.sendText(chatID, search.MsgNoMore)
			}
			return
		}
		b.typing(chatID)
		b.runPage(ctx, chatID, s, serial, req)

	case cbDetail:
		b.expand(ctx, chatID, s, index)

	default:
		s.mu.Unlock()
	}
}

// expand shows the details of one result. It must be called with s.mu held and
// releases it. Details already loaded are sent without another fetch; a failed fetch
// is retried.
func (b *Bot) expand(ctx context.Context, chatID int64, s *session, index int) {
	it := s.ctrl.Item(index)
	if it == nil {
		s.mu.Unlock()
		b.sendText(chatID, staleMsg)
		return
	}
	if it.State() == search.DetailFailed {
		it.Toggle()
	}
	req, ok := it.Expand()
	detail := it.Detail()
	s.mu.Unlock()

	if !ok {
		if detail != nil {
			b.sendDetail(chatID, detail)
		}
		return
	}

	b.typing(chatID)
	res := req.Run(ctx, b.svc)

	s.mu.Lock()
	applied := s.ctrl.ApplyDetail(res)
	s.mu.Unlock()

	if !applied {
		b.logger.Debug("discarded stale details", slog.String("id", req.ID))
		return
	}
	if res.Err != nil || res.Detail == nil {
		b.logger.Info("detail fetch failed",
			slog.String("id", req.ID),
			slog.Any("error", res.Err),
		)
		b.sendText(chatID, failureText(search.MsgDetailFailed, res.Err))
		return
	}
	b.sendDetail(chatID, res.Detail)
}

// runPage performs a page fetch, merges it into the session and replies with the
// newly appended results.
func (b *Bot) runPage(ctx context.Context, chatID int64, s *session, serial int, req search.PageRequest) {
	res := req.Run(ctx, b.svc)

	s.mu.Lock()
	from := s.ctrl.Len()
	if !s.ctrl.Apply(res) {
		s.mu.Unlock()
		b.logger.Debug("discarded stale page",
			slog.String("query", req.Query), slog.Int("page", req.Page))
		return
	}
	if res.Err != nil {
		s.mu.Unlock()
		b.logger.Info("page fetch failed",
			slog.String("query", req.Query),
			slog.Int("page", req.Page),
			slog.String("error", res.Err.Error()),
		)
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Retry", callbackData(cbRetry, serial)),
		))
		b.sendWithKeyboard(chatID, failureText(search.MsgFetchFailed, res.Err), "", &kb)
		return
	}

	items := s.ctrl.Items()
	if len(items) == from {
		s.mu.Unlock()
		b.sendText(chatID, noResultsMsg)
		return
	}
	text := formatResults(items, from, s.ctrl.TotalResults(), s.ctrl.More())
	kb := buildResultsKeyboard(items[from:], serial, s.ctrl.More())
	s.mu.Unlock()

	b.sendWithKeyboard(chatID, text, tgbotapi.ModeMarkdownV2, kb)
}

// buildResultsKeyboard returns one details button per item plus a load-more button.
func buildResultsKeyboard(items []*search.Item, serial int, more bool) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for _, it := range items {
		label := it.Summary().Title
		if r := []rune(label); len(r) > maxButtonLabel {
			label = string(r[:maxButtonLabel]) + "…"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d. %s", it.Index()+1, label),
			callbackData(cbDetail, serial)+":"+strconv.Itoa(it.Index()),
		)))
	}
	if more {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Load more", callbackData(cbMore, serial)),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func callbackData(kind string, serial int) string {
	return kind + ":" + strconv.Itoa(serial)
}

// parseCallback splits callback data into its kind, session serial and item index.
func parseCallback(data string) (kind string, serial, index int, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return "", 0, 0, false
	}
	serial, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	switch parts[0] {
	case cbMore, cbRetry:
		return parts[0], serial, 0, len(parts) == 2
	case cbDetail:
		if len(parts) != 3 {
			return "", 0, 0, false
		}
		index, err = strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return "", 0, 0, false
		}
		return cbDetail, serial, index, true
	}
	return "", 0, 0, false
}

// sendDetail sends the poster, when there is one, followed by the details.
func (b *Bot) sendDetail(chatID int64, d *core.MovieDetail) {
	if d.Poster != "" {
		// Telegram fetches the URL itself.
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(d.Poster))
		photo.Caption = d.Title
		if _, err := b.out.Send(photo); err != nil {
			b.logger.Debug("failed to send poster",
				slog.String("url", d.Poster),
				slog.String("error", err.Error()),
			)
		}
	}
	b.sendWithKeyboard(chatID, formatDetail(d), tgbotapi.ModeMarkdownV2, nil)
}

// typing shows the typing indicator.
func (b *Bot) typing(chatID int64) {
	if _, err := b.out.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send typing action", slog.String("error", err.Error()))
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	b.sendWithKeyboard(chatID, text, "", nil)
}

// sendWithKeyboard sends a message with an optional parse mode and inline keyboard.
func (b *Bot) sendWithKeyboard(chatID int64, text, parseMode string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}
