package telegram

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"meal-scheduler/internal/app"
	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const previewTTL = time.Hour

// maxUploadBytes caps CSV uploads at the HTTP API's request body limit.
const maxUploadBytes = 1 << 20

// BotAPI is the subset of the Telegram client the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
	GetFileDirectURL(fileID string) (string, error)
}

// PreferenceStore reads and writes restricted tags.
type PreferenceStore interface {
	FetchRestrictions(ctx context.Context, userID string) ([]string, error)
	SetRestrictions(ctx context.Context, userID string, tags []string) error
}

// Bot wraps the Telegram API, the schedule planner and the clipper.
type Bot struct {
	api          BotAPI
	planner      *planner.Planner
	clipper      *clipper.Clipper
	items        app.CatalogImporter
	prefs        PreferenceStore
	sessions     *SessionRepository
	metricsStore *metrics.Store
	db           *sql.DB
	cfg          *config.Config
	httpClient   *http.Client
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	db *sql.DB,
	planner *planner.Planner,
	clipper *clipper.Clipper,
	items app.CatalogImporter,
	prefs PreferenceStore,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(bot, cfg, db, planner, clipper, items, prefs, metricsStore), nil
}

func newBot(
	api BotAPI,
	cfg *config.Config,
	db *sql.DB,
	planner *planner.Planner,
	clipper *clipper.Clipper,
	items app.CatalogImporter,
	prefs PreferenceStore,
	metricsStore *metrics.Store,
) *Bot {
	return &Bot{
		api:          api,
		planner:      planner,
		clipper:      clipper,
		items:        items,
		prefs:        prefs,
		sessions:     NewSessionRepository(db),
		metricsStore: metricsStore,
		db:           db,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if !b.cfg.IsAllowedTelegramUser(update.CallbackQuery.From.ID) {
			log.Printf("⚠️ Unauthorized callback from UserID: %d", update.CallbackQuery.From.ID)
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.cfg.IsAllowedTelegramUser(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	if msg.Document != nil {
		b.handleImport(ctx, msg)
		return
	}

	if msg.IsCommand() {
		args := strings.TrimSpace(msg.CommandArguments())
		switch msg.Command() {
		case "plan":
			b.handlePlanRequest(ctx, msg, args)
		case "plans":
			b.handleListPlans(ctx, msg)
		case "show":
			b.handleShowPlan(ctx, msg, args)
		case "restrict":
			b.handleRestrict(ctx, msg, args)
		case "clip":
			b.handleClip(ctx, msg, args)
		case "metrics":
			b.handleMetricsRequest(msg)
		default:
			b.reply(msg.Chat.ID, helpText)
		}
		return
	}

	if strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://") {
		b.handleClip(ctx, msg, "main "+msg.Text)
		return
	}

	b.reply(msg.Chat.ID, helpText)
}

const helpText = "🍽 *Meal Scheduler*\n\n" +
	"/plan `[YYYY-MM-DD]` preview a week of meals\n" +
	"/plans list saved schedules\n" +
	"/show `<id>` show a saved schedule\n" +
	"/restrict `tag, tag` set once-a-day tags\n" +
	"/clip `main|side <url>` save a recipe page\n" +
	"Send a CSV file to import items."

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (b *Bot) handlePlanRequest(ctx context.Context, msg *tgbotapi.Message, args string) {
	start := planner.GetNextMonday(time.Now())
	if args != "" {
		d, err := schedule.ParseDate(args)
		if err != nil {
			b.reply(msg.Chat.ID, "❌ Dates look like `2024-06-10`.")
			return
		}
		start = d
	}

	sentMsg, err := b.send(msg.Chat.ID, "🧑‍🍳 *Planning...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	userID := userKey(msg.From.ID)
	exists, err := b.planner.PlanExists(ctx, userID, start)
	if err != nil {
		b.editError(msg.Chat.ID, sentMsg.MessageID, "Error checking saved schedules", err)
		return
	}
	if exists {
		promptText := fmt.Sprintf("🗓️ A schedule already exists for the week starting *%s*.\nWhat would you like to do?", schedule.FormatDate(start))
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Redo This Week", "redo|"+schedule.FormatDate(start)),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Plan Following Week", "next|"+schedule.FormatDate(start)),
			),
		)
		b.edit(msg.Chat.ID, sentMsg.MessageID, promptText, &keyboard)
		return
	}

	b.sendPreview(ctx, userID, msg.Chat.ID, sentMsg.MessageID, start, false)
}

// sendPreview generates a plan, parks it in a session and offers Save/Regenerate.
func (b *Bot) sendPreview(ctx context.Context, userID string, chatID int64, messageID int, start time.Time, replace bool) {
	_, end := planner.WeekRange(start)
	plan, err := b.planner.GeneratePlan(ctx, userID, start, end)
	if err != nil {
		b.editError(chatID, messageID, "Error generating schedule", err)
		return
	}

	sessionID, err := b.sessions.Create(ctx, userID, SessionPlanPreview, StateAwaitingReview, SessionContextData{Plan: plan, Replace: replace}, previewTTL)
	if err != nil {
		b.editError(chatID, messageID, "Error storing preview", err)
		return
	}

	b.edit(chatID, messageID, formatPlanPreview(plan), previewKeyboard(sessionID))
}

func previewKeyboard(sessionID int64) *tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(sessionID, 10)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", "save|"+id),
			tgbotapi.NewInlineKeyboardButtonData("🎲 Regenerate", "regen|"+id),
		),
	)
	return &keyboard
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	userID := userKey(query.From.ID)

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok {
		return
	}

	switch action {
	case "redo", "next":
		start, err := schedule.ParseDate(arg)
		if err != nil {
			return
		}
		replace := true
		if action == "next" {
			start = start.AddDate(0, 0, 7)
			replace = false
		}
		b.edit(chatID, messageID, "🧑‍🍳 *Planning...*", nil)
		b.sendPreview(ctx, userID, chatID, messageID, start, replace)
	case "save", "regen":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return
		}
		session, data, ok := b.loadPreview(ctx, userID, chatID, messageID, id)
		if !ok {
			return
		}
		if action == "save" {
			b.savePreview(ctx, chatID, messageID, session, data)
		} else {
			b.regeneratePreview(ctx, chatID, messageID, session, data)
		}
	}
}

func (b *Bot) loadPreview(ctx context.Context, userID string, chatID int64, messageID int, id int64) (*Session, SessionContextData, bool) {
	session, err := b.sessions.Get(ctx, id)
	if err != nil {
		b.editError(chatID, messageID, "Error loading preview", err)
		return nil, SessionContextData{}, false
	}
	if session == nil || session.UserID != userID || session.SessionType != SessionPlanPreview || session.Expired(time.Now().UTC()) {
		b.edit(chatID, messageID, "⌛ This preview has expired. Send /plan to start again.", nil)
		return nil, SessionContextData{}, false
	}
	data, err := session.GetContextData()
	if err != nil || data.Plan == nil {
		b.editError(chatID, messageID, "Error reading preview", err)
		return nil, SessionContextData{}, false
	}
	return session, data, true
}

func (b *Bot) savePreview(ctx context.Context, chatID int64, messageID int, session *Session, data SessionContextData) {
	id, err := b.planner.SavePlan(ctx, data.Plan, data.Replace)
	if err != nil {
		b.editError(chatID, messageID, "Error saving schedule", err)
		return
	}
	if err := b.sessions.Delete(ctx, session.ID); err != nil {
		log.Printf("Warning: failed to delete session %d: %v", session.ID, err)
	}
	text := formatScheduleMarkdown("✅ *Saved Schedule*", data.Plan.Days) + fmt.Sprintf("\n_id: %s_", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, id))
	b.edit(chatID, messageID, text, nil)
}

func (b *Bot) regeneratePreview(ctx context.Context, chatID int64, messageID int, session *Session, data SessionContextData) {
	plan, err := b.planner.GeneratePlan(ctx, session.UserID, data.Plan.Start, data.Plan.End)
	if err != nil {
		b.editError(chatID, messageID, "Error generating schedule", err)
		return
	}
	data.Plan = plan
	if err := b.sessions.Update(ctx, session.ID, StateAwaitingReview, data); err != nil {
		b.editError(chatID, messageID, "Error storing preview", err)
		return
	}
	b.edit(chatID, messageID, formatPlanPreview(plan), previewKeyboard(session.ID))
}

func (b *Bot) handleListPlans(ctx context.Context, msg *tgbotapi.Message) {
	list, err := b.planner.ListPlans(ctx, userKey(msg.From.ID))
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error listing schedules.")
		return
	}
	if len(list) == 0 {
		b.reply(msg.Chat.ID, "_No saved schedules yet._ Send /plan to make one.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🗂 *Saved Schedules*\n\n")
	for _, s := range list {
		sb.WriteString(fmt.Sprintf("• %s → %s\n  `%s`\n", schedule.FormatDate(s.StartDate), schedule.FormatDate(s.EndDate), s.ID))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleShowPlan(ctx context.Context, msg *tgbotapi.Message, id string) {
	if id == "" {
		b.reply(msg.Chat.ID, "Usage: /show `<id>`")
		return
	}
	saved, err := b.planner.LoadPlan(ctx, userKey(msg.From.ID), id)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Schedule not found.")
		return
	}
	title := fmt.Sprintf("📅 *%s to %s*", schedule.FormatDate(saved.Schedule.StartDate), schedule.FormatDate(saved.Schedule.EndDate))
	b.reply(msg.Chat.ID, formatScheduleMarkdown(title, saved.Days))
}

func (b *Bot) handleRestrict(ctx context.Context, msg *tgbotapi.Message, args string) {
	userID := userKey(msg.From.ID)
	if args != "" {
		var tags []string
		if args != "none" {
			tags = strings.Split(args, ",")
		}
		if err := b.prefs.SetRestrictions(ctx, userID, tags); err != nil {
			b.reply(msg.Chat.ID, "❌ Error saving restrictions.")
			return
		}
	}
	current, err := b.prefs.FetchRestrictions(ctx, userID)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error loading restrictions.")
		return
	}
	if len(current) == 0 {
		b.reply(msg.Chat.ID, "🔓 No restricted tags. Use /restrict `tag, tag` to add some.")
		return
	}
	b.reply(msg.Chat.ID, "🔒 *Once a day:* "+tgbotapi.EscapeText(tgbotapi.ModeMarkdown, strings.Join(current, ", ")))
}

func (b *Bot) handleClip(ctx context.Context, msg *tgbotapi.Message, args string) {
	roleArg, url, _ := strings.Cut(args, " ")
	role, err := catalog.ParseRole(roleArg)
	url = strings.TrimSpace(url)
	if err != nil || url == "" {
		b.reply(msg.Chat.ID, "Usage: /clip `main|side <url>`")
		return
	}

	sentMsg, err := b.send(msg.Chat.ID, "✂️ *Clipping recipe...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	item, err := b.clipper.ClipURL(ctx, userKey(msg.From.ID), url, role)
	if err != nil {
		b.editError(msg.Chat.ID, sentMsg.MessageID, "Error clipping recipe", err)
		return
	}
	text := fmt.Sprintf("✅ *Saved %s:* %s", item.Role, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, item.Title))
	if len(item.Tags) > 0 {
		text += "\n_" + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, strings.Join(item.Tags, ", ")) + "_"
	}
	b.edit(msg.Chat.ID, sentMsg.MessageID, text, nil)
}

var fileTooLarge = fmt.Sprintf("❌ File too large, the limit is %d KB.", maxUploadBytes>>10)

func (b *Bot) handleImport(ctx context.Context, msg *tgbotapi.Message) {
	if !strings.EqualFold(filepath.Ext(msg.Document.FileName), ".csv") {
		b.reply(msg.Chat.ID, "📎 Only `.csv` files can be imported.")
		return
	}
	if msg.Document.FileSize > maxUploadBytes {
		b.reply(msg.Chat.ID, fileTooLarge)
		return
	}

	fileURL, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Could not download the file.")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Could not download the file.")
		return
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Could not download the file.")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b.reply(msg.Chat.ID, "❌ Could not download the file.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes+1))
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Could not download the file.")
		return
	}
	if len(data) > maxUploadBytes {
		b.reply(msg.Chat.ID, fileTooLarge)
		return
	}

	items, err := app.ImportCSV(ctx, b.items, userKey(msg.From.ID), bytes.NewReader(data))
	if err != nil {
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ *Import failed, nothing was saved:*\n```\n%s\n```", safeErr))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Imported %d items.", len(items)))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath), b.db)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d/%d slots, %d tokens\n", d.Date, d.Runs, d.SlotsFilled, d.SlotsRequested, d.Tokens))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	sb.WriteString(fmt.Sprintf("• DB Connections: %d open, %d in use\n", health.OpenConnections, health.InUse))

	b.reply(chatID, sb.String())
}

func formatPlanPreview(plan *planner.Plan) string {
	title := fmt.Sprintf("📅 *Week of %s*", plan.Start.Format("Jan 2"))
	text := formatScheduleMarkdown(title, plan.Days)
	if plan.Filled < plan.Requested {
		text += fmt.Sprintf("\n⚠️ Filled %d of %d slots.", plan.Filled, plan.Requested)
	}
	return text
}

func formatScheduleMarkdown(title string, days []scheduler.Day) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")

	for _, d := range days {
		sb.WriteString(fmt.Sprintf("*%s*\n", d.Date.Format("Mon Jan 2")))
		if len(d.Meals) == 0 {
			sb.WriteString("_Nothing planned_\n\n")
			continue
		}
		for _, m := range d.Meals {
			sb.WriteString(fmt.Sprintf("• %s: %s + %s\n", m.MealType.Label(),
				tgbotapi.EscapeText(tgbotapi.ModeMarkdown, m.Main.Title),
				tgbotapi.EscapeText(tgbotapi.ModeMarkdown, m.Side.Title)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) send(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.api.Send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.send(chatID, text); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d: %v", messageID, err)
	}
}

func (b *Bot) editError(chatID int64, messageID int, what string, err error) {
	log.Printf("%s: %v", what, err)
	safeErr := "unknown error"
	if err != nil {
		safeErr = strings.ReplaceAll(err.Error(), "`", "'")
	}
	b.edit(chatID, messageID, fmt.Sprintf("❌ *%s:*\n```\n%s\n```", what, safeErr), nil)
}
