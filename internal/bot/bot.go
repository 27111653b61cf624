package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/jarvis-bot/internal/assistant"
	"github.com/xaenox/jarvis-bot/internal/models"
	"github.com/xaenox/jarvis-bot/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultOfflineMessage = "🤖 جاروِیس در حال حاضر آفلاین است. پیام شما ثبت شد و بعداً پاسخ داده خواهد شد."
	strangerMessage       = "🤖 سلام! من جاروِیس هستم، اما فقط برای مالک خود کار می‌کنم."
	restrictedMessage     = "🚫 دسترسی محدود"
	aiDisabledHint        = "👋 سلام! AI غیرفعال است. از دستورات استفاده کنید. /help برای راهنما\n\n💡 برای فعال کردن AI: /ai on"

	callbackClearTasksYes = "clear_tasks_yes"
	callbackClearTasksNo  = "clear_tasks_no"

	offlineMessagesShown = 10
)

// Bot routes Telegram updates to the assistant. Only the owner gets
// live handling; strangers are declined or, in offline mode, queued.
type Bot struct {
	api          *tgbotapi.BotAPI
	storage      storage.Storage
	dispatcher   *assistant.Dispatcher
	orchestrator *assistant.Orchestrator
	memory       *assistant.ConversationMemory
	logger       *zap.Logger
	ownerID      int64

	mu             sync.Mutex
	offlineMode    bool
	offlineMessage string
}

func New(token string, ownerID int64, storage storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:            api,
		storage:        storage,
		logger:         logger,
		ownerID:        ownerID,
		offlineMessage: defaultOfflineMessage,
	}, nil
}

// AttachAssistant wires the assistant components in. The orchestrator is
// nil when no API key is configured; free-text handling then falls back
// to the AI-disabled hint. Must be called before Start.
func (b *Bot) AttachAssistant(dispatcher *assistant.Dispatcher, orchestrator *assistant.Orchestrator, memory *assistant.ConversationMemory) {
	b.dispatcher = dispatcher
	b.orchestrator = orchestrator
	b.memory = memory
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			go b.handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.ownerID
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	b.handleText(ctx, message)
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	b.mu.Lock()
	offline := b.offlineMode
	offlineMessage := b.offlineMessage
	b.mu.Unlock()

	if offline && !b.isOwner(userID) {
		b.queueOfflineMessage(ctx, message)
		b.sendMessage(message.Chat.ID, offlineMessage)
		return
	}

	if !b.isOwner(userID) {
		b.sendMessage(message.Chat.ID, strangerMessage)
		return
	}

	if !b.aiReady(ctx, userID) {
		b.sendMessage(message.Chat.ID, aiDisabledHint)
		return
	}

	requestID := uuid.New().String()
	b.logger.Info("Handling owner message",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID))

	typing := tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(typing); err != nil {
		b.logger.Warn("Failed to send typing action",
			zap.Error(err),
			zap.String("request_id", requestID))
	}

	reply := b.orchestrator.Respond(ctx, userID, message.Text)
	b.sendMarkdown(message.Chat.ID, reply)
}

// aiReady checks both gates: the global one (API key configured, i.e.
// an orchestrator exists) and the per-user setting.
func (b *Bot) aiReady(ctx context.Context, userID int64) bool {
	if b.orchestrator == nil {
		return false
	}

	settings, err := b.storage.GetUserSettings(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to load user settings",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return true
	}
	return settings.AIEnabled
}

func (b *Bot) queueOfflineMessage(ctx context.Context, message *tgbotapi.Message) {
	msg := &models.OfflineMessage{
		UserID:    message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		Message:   message.Text,
	}
	if err := b.storage.SaveOfflineMessage(ctx, msg); err != nil {
		b.logger.Error("Failed to queue offline message",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(ctx, message)
	case "ai":
		b.handleAI(ctx, message)
	case "model":
		b.handleModel(ctx, message)
	case "clear":
		b.handleClear(message)
	case "cleartasks":
		b.handleClearTasks(message)
	case "offline":
		b.handleOffline(message)
	case "online":
		b.handleOnline(ctx, message)
	default:
		if b.isOwner(message.From.ID) {
			b.sendMessage(message.Chat.ID, "دستور ناشناخته. /help برای راهنما")
		}
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		b.sendMessage(message.Chat.ID, strangerMessage)
		return
	}

	aiStatus := "🚫 AI غیرفعال"
	if b.orchestrator != nil {
		aiStatus = "🤖 AI فعال"
	}

	welcome := fmt.Sprintf(`🤖 **سلام! من جاروِیس هستم، دستیار هوشمند شما**

%s

✨ **قابلیت: گفتگوی طبیعی!**
می‌توانید بدون دستور خاص با من صحبت کنید:

💬 **مثال‌هایی از چیزهایی که می‌توانید بگویید:**
• "یه وظیفه اضافه کن: خرید نان"
• "وظایفم رو نشون بده"
• "وظیفه شماره 1 رو تمام کن"
• "یادداشت کن: فردا جلسه مهم دارم"
• "30 دقیقه دیگر یادم بنداز قرار دارم"
• "یه نکته آموزشی بگو"
• "انگیزه‌ام پایینه، یه جمله قشنگ بگو"
• "خلاصه امروزم رو بده"

⚙️ **تنظیمات:** /ai, /model, /help

فقط پیام بفرستید و من متوجه منظورتان می‌شوم! 🚀`, aiStatus)

	b.sendMarkdown(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(ctx context.Context, message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		b.sendMessage(message.Chat.ID, restrictedMessage)
		return
	}

	aiAvailable := "❌"
	if b.orchestrator != nil {
		aiAvailable = "✅"
	}

	model := "-"
	if settings, err := b.storage.GetUserSettings(ctx, b.ownerID); err == nil && settings.AIModel != "" {
		model = settings.AIModel
	}

	help := fmt.Sprintf(`🤖 **راهنمای کامل جاروِیس**

✨ **گفتگوی طبیعی:**
فقط به زبان طبیعی بگویید چه می‌خواهید:

📋 **وظایف:**
• "یه وظیفه اضافه کن: متن وظیفه"
• "وظایفم رو نشون بده"
• "وظیفه شماره X رو تمام کن"

📝 **یادداشت:**
• "یادداشت کن: متن"
• "یادداشت‌هام رو نشون بده"

⏰ **یادآوری:**
• "30 دقیقه دیگر یادم بنداز: متن"
• "2 ساعت دیگر یادآوری بذار: متن"

🧠 **سایر موارد:**
• "یه نکته آموزشی بگو"
• "انگیزه‌ام کم شده، کمکم کن"
• "خلاصه امروزم رو بده"

🤖 **تنظیمات AI:**
• /ai on/off - فعال/غیرفعال کردن
• /model - تغییر مدل AI
• /clear - پاک کردن حافظه گفتگو

⚙️ **سایر تنظیمات:**
• /offline, /online, /cleartasks

AI فعال: %s
مدل فعال: %s

💡 **نکته:** کافی است فقط بنویسید چه می‌خواهید!`, aiAvailable, model)

	b.sendMarkdown(message.Chat.ID, help)
}

func (b *Bot) handleAI(ctx context.Context, message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	userID := message.From.ID
	args := strings.ToLower(strings.TrimSpace(message.CommandArguments()))

	var reply string
	switch args {
	case "on", "enable", "فعال":
		if err := b.storage.SetAIEnabled(ctx, userID, true); err != nil {
			b.logger.Error("Failed to enable AI", zap.Error(err), zap.Int64("user_id", userID))
			b.sendErrorMessage(message.Chat.ID, "تنظیمات ذخیره نشد. دوباره تلاش کنید.")
			return
		}
		reply = "🤖 AI فعال شد! حالا می‌توانید با زبان طبیعی با من گفتگو کنید."
	case "off", "disable", "غیرفعال":
		if err := b.storage.SetAIEnabled(ctx, userID, false); err != nil {
			b.logger.Error("Failed to disable AI", zap.Error(err), zap.Int64("user_id", userID))
			b.sendErrorMessage(message.Chat.ID, "تنظیمات ذخیره نشد. دوباره تلاش کنید.")
			return
		}
		reply = "🚫 AI غیرفعال شد. فقط دستورات سنتی کار می‌کنند."
	case "":
		settings, err := b.storage.GetUserSettings(ctx, userID)
		if err != nil {
			b.logger.Error("Failed to load user settings", zap.Error(err), zap.Int64("user_id", userID))
			b.sendErrorMessage(message.Chat.ID, "تنظیمات خوانده نشد. دوباره تلاش کنید.")
			return
		}
		status := "غیرفعال ❌"
		if settings.AIEnabled {
			status = "فعال ✅"
		}
		model := settings.AIModel
		if model == "" {
			model = "پیش‌فرض"
		}
		reply = fmt.Sprintf("🤖 **وضعیت AI:**\n\n📊 وضعیت: %s\n🧠 مدل: %s\n\n💡 برای تغییر: /ai on یا /ai off", status, model)
	default:
		reply = "❌ استفاده: /ai on یا /ai off"
	}

	b.sendMarkdown(message.Chat.ID, reply)
}

func (b *Bot) handleModel(ctx context.Context, message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	userID := message.From.ID
	args := strings.TrimSpace(message.CommandArguments())

	if args != "" {
		if err := b.storage.SetAIModel(ctx, userID, args); err != nil {
			b.logger.Error("Failed to set AI model", zap.Error(err), zap.Int64("user_id", userID))
			b.sendErrorMessage(message.Chat.ID, "تنظیمات ذخیره نشد. دوباره تلاش کنید.")
			return
		}
		b.sendMarkdown(message.Chat.ID, fmt.Sprintf("🧠 مدل AI تغییر کرد به: %s", args))
		return
	}

	current := "پیش‌فرض"
	if settings, err := b.storage.GetUserSettings(ctx, userID); err == nil && settings.AIModel != "" {
		current = settings.AIModel
	}

	popular := []string{
		"anthropic/claude-3.5-sonnet",
		"openai/gpt-4-turbo",
		"openai/gpt-3.5-turbo",
		"google/gemini-pro",
		"meta-llama/llama-3-70b-instruct",
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧠 **مدل فعلی:** %s\n\n**مدل‌های محبوب:**\n", current))
	for _, model := range popular {
		sb.WriteString(fmt.Sprintf("• %s\n", model))
	}
	sb.WriteString("\n💡 برای تغییر: /model <نام مدل>\nمثال: /model openai/gpt-4-turbo")

	b.sendMarkdown(message.Chat.ID, sb.String())
}

func (b *Bot) handleClear(message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	b.memory.Clear(message.From.ID)
	b.sendMessage(message.Chat.ID, "🧹 حافظه گفتگو پاک شد! گفتگوی جدید شروع شد.")
}

func (b *Bot) handleClearTasks(message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ بله، پاک کن", callbackClearTasksYes),
			tgbotapi.NewInlineKeyboardButtonData("❌ لغو", callbackClearTasksNo),
		),
	)

	msg := tgbotapi.NewMessage(message.Chat.ID, "🗑️ همه وظایف پاک شوند؟")
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send clear-tasks confirmation",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleOffline(message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	args := strings.TrimSpace(message.CommandArguments())

	b.mu.Lock()
	if args != "" {
		b.offlineMessage = args
	}
	b.offlineMode = true
	offlineMessage := b.offlineMessage
	b.mu.Unlock()

	b.sendMarkdown(message.Chat.ID, fmt.Sprintf("📴 **حالت آفلاین فعال شد**\n\n💬 %s", offlineMessage))
}

func (b *Bot) handleOnline(ctx context.Context, message *tgbotapi.Message) {
	if !b.isOwner(message.From.ID) {
		return
	}

	b.mu.Lock()
	b.offlineMode = false
	b.mu.Unlock()

	messages, err := b.storage.DrainOfflineMessages(ctx)
	if err != nil {
		b.logger.Error("Failed to drain offline messages", zap.Error(err))
	}

	if len(messages) > 0 {
		if len(messages) > offlineMessagesShown {
			messages = messages[:offlineMessagesShown]
		}

		var sb strings.Builder
		sb.WriteString("📱 **پیام‌های آفلاین:**\n\n")
		for _, msg := range messages {
			name := msg.Username
			if name == "" {
				name = msg.FirstName
			}
			if name == "" {
				name = "ناشناس"
			}
			sb.WriteString(fmt.Sprintf("👤 %s (%s):\n💬 %s\n\n", name, msg.ReceivedAt.Format("01/02 15:04"), msg.Message))
		}
		b.sendMarkdown(message.Chat.ID, sb.String())
	}

	b.sendMarkdown(message.Chat.ID, "✅ **بازگشت به حالت آنلاین**\n\nجاروِیس آماده خدمت!")
}

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()

	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Warn("Failed to answer callback query", zap.Error(err))
	}

	switch query.Data {
	case callbackClearTasksYes:
		if err := b.storage.ClearTasks(ctx, query.From.ID); err != nil {
			b.logger.Error("Failed to clear tasks",
				zap.Error(err),
				zap.Int64("user_id", query.From.ID))
			b.editMessage(query, "❌ پاک کردن وظایف ناموفق بود.")
			return
		}
		b.editMessage(query, "🗑️ همه وظایف پاک شدند!")
	case callbackClearTasksNo:
		b.editMessage(query, "❌ عملیات لغو شد.")
	}
}

func (b *Bot) editMessage(query *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Error(err),
			zap.Int64("chat_id", query.Message.Chat.ID))
	}
}

// NotifyReminder is the scheduler's delivery callback. Failures are
// logged and swallowed; the reminder stays marked completed.
func (b *Bot) NotifyReminder(userID int64, text string) {
	b.sendMarkdown(userID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// sendMarkdown tries Markdown first and falls back to plain text when
// Telegram rejects the formatting.
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err == nil {
		return
	}

	b.sendMessage(chatID, text)
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
