package assistant

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/jarvis-bot/internal/scheduler"
	"github.com/xaenox/jarvis-bot/internal/storage"
	"github.com/xaenox/jarvis-bot/internal/timeparse"
	"go.uber.org/zap"
)

// Notifier delivers a reminder notification to a user. Delivery errors
// are the transport's problem; the dispatcher never retries.
type Notifier func(userID int64, text string)

const recentNotesLimit = 10

var tips = []string{
	"💡 **برنامه‌نویسی:** همیشه کدتان را مستند کنید!",
	"🌐 **شبکه:** TCP قابل اطمینان، UDP سریع‌تر است.",
	"🔒 **امنیت:** رمزها را هاردکد نکنید، از متغیرهای محیطی استفاده کنید.",
	"⚡ **کارایی:** الگوریتم O(n) بهتر از O(n²) است.",
	"🐍 **Python:** از List Comprehension استفاده کنید: [x*2 for x in range(10)]",
	"🗄️ **دیتابیس:** ایندکس روی ستون‌های پرجستجو سرعت را افزایش می‌دهد.",
	"🔧 **Git:** از git stash برای ذخیره موقت استفاده کنید.",
	"🎯 **تست:** کد بدون تست مثل ماشین بدون ترمز است!",
}

var quotes = []string{
	"💫 \"تنها راه انجام کار عالی این است که آنچه انجام می‌دهید را دوست داشته باشید.\" - استیو جابز",
	"🌟 \"موفقیت نهایی نیست، شکست کشنده نیست: شجاعت ادامه دادن اهمیت دارد.\" - چرچیل",
	"🚀 \"آینده متعلق به کسانی است که به رویاهایشان ایمان دارند.\" - الینور روزولت",
	"💎 \"موفقیت مجموع تلاش‌های کوچک روزانه است.\" - رابرت کلیر",
	"🌈 \"هر روز فرصت جدیدی است. امروز را بهترین روز زندگی‌تان کنید.\"",
}

// Dispatcher maps symbolic function names and parameter maps onto
// storage operations and returns a human-readable reply. Every failure
// degrades to a reply string; nothing propagates as an error.
type Dispatcher struct {
	store  storage.Storage
	sched  *scheduler.Scheduler
	notify Notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(store storage.Storage, sched *scheduler.Scheduler, notify Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sched:  sched,
		notify: notify,
		logger: logger,
		now:    time.Now,
	}
}

// Execute runs one of the nine assistant functions for the given user.
func (d *Dispatcher) Execute(ctx context.Context, name string, params map[string]string, userID int64) string {
	switch name {
	case "add_task":
		return d.addTask(ctx, userID, params["description"])
	case "list_tasks":
		return d.listTasks(ctx, userID)
	case "complete_task":
		return d.completeTask(ctx, userID, params["task_number"])
	case "add_note":
		return d.addNote(ctx, userID, params["content"])
	case "list_notes":
		return d.listNotes(ctx, userID)
	case "set_reminder":
		return d.setReminder(ctx, userID, params["time"], params["description"])
	case "get_tip":
		return tips[rand.Intn(len(tips))]
	case "get_quote":
		return quotes[rand.Intn(len(quotes))]
	case "get_summary":
		return d.getSummary(ctx, userID)
	default:
		return fmt.Sprintf("❌ عملکرد '%s' شناخته شده نیست.", name)
	}
}

func (d *Dispatcher) addTask(ctx context.Context, userID int64, description string) string {
	if description == "" {
		return "❌ نیاز به توضیحات وظیفه دارم."
	}

	task, err := d.store.CreateTask(ctx, userID, description)
	if err != nil {
		return d.storageError("add_task", err)
	}

	return fmt.Sprintf("✅ وظیفه اضافه شد: %s", task.Description)
}

func (d *Dispatcher) listTasks(ctx context.Context, userID int64) string {
	tasks, err := d.store.ListPendingTasks(ctx, userID)
	if err != nil {
		return d.storageError("list_tasks", err)
	}

	if len(tasks) == 0 {
		return "📋 هیچ وظیفه‌ای در لیست نیست!"
	}

	var sb strings.Builder
	sb.WriteString("📋 **وظایف باقی‌مانده:**\n\n")
	for i, task := range tasks {
		sb.WriteString(fmt.Sprintf("%d. %s 📅 %s\n", i+1, task.Description, task.CreatedAt.Format("01/02")))
	}
	return sb.String()
}

// completeTask resolves the task number as a 1-based position in the
// user's current incomplete-task list, not a stored id. The position is
// re-resolved on every call since completions shift later tasks down.
func (d *Dispatcher) completeTask(ctx context.Context, userID int64, taskNumber string) string {
	if taskNumber == "" {
		return "❌ کدام وظیفه را تکمیل کنم؟ شماره آن را بگویید."
	}

	number, err := strconv.Atoi(strings.TrimSpace(taskNumber))
	if err != nil {
		return "❌ شماره وظیفه باید عدد باشد."
	}

	tasks, err := d.store.ListPendingTasks(ctx, userID)
	if err != nil {
		return d.storageError("complete_task", err)
	}

	if number < 1 || number > len(tasks) {
		return "❌ شماره وظیفه نامعتبر است."
	}

	task := tasks[number-1]
	if err := d.store.CompleteTask(ctx, task.ID); err != nil {
		return d.storageError("complete_task", err)
	}

	return fmt.Sprintf("🎉 وظیفه تکمیل شد: %s", task.Description)
}

func (d *Dispatcher) addNote(ctx context.Context, userID int64, content string) string {
	if content == "" {
		return "❌ متن یادداشت را وارد کنید."
	}

	note, err := d.store.CreateNote(ctx, userID, content)
	if err != nil {
		return d.storageError("add_note", err)
	}

	return fmt.Sprintf("📝 یادداشت ذخیره شد: %s", note.Content)
}

func (d *Dispatcher) listNotes(ctx context.Context, userID int64) string {
	notes, err := d.store.ListRecentNotes(ctx, userID, recentNotesLimit)
	if err != nil {
		return d.storageError("list_notes", err)
	}

	if len(notes) == 0 {
		return "📝 هیچ یادداشتی موجود نیست!"
	}

	var sb strings.Builder
	sb.WriteString("📝 **یادداشت‌ها:**\n\n")
	for _, note := range notes {
		sb.WriteString(fmt.Sprintf("💡 %s 📅 %s\n\n", note.Content, note.CreatedAt.Format("01/02")))
	}
	return sb.String()
}

// setReminder persists the reminder and registers the one-shot job in
// one go; the two must be created together.
func (d *Dispatcher) setReminder(ctx context.Context, userID int64, timeStr, description string) string {
	if timeStr == "" || description == "" {
		return "❌ زمان و توضیحات یادآوری لازم است. مثل: '30 دقیقه دیگر قرار ملاقات'"
	}

	dueAt, err := timeparse.Parse(timeStr, d.now())
	if err != nil {
		return fmt.Sprintf("❌ %s", err.Error())
	}

	reminder, err := d.store.CreateReminder(ctx, userID, description, dueAt)
	if err != nil {
		return d.storageError("set_reminder", err)
	}

	d.sched.Schedule(reminder.ID, dueAt, func() {
		d.fireReminder(userID, description, reminder.ID)
	})

	return fmt.Sprintf("⏰ یادآوری تنظیم شد: %s در %s", description, dueAt.Format("01/02 15:04"))
}

// fireReminder marks the record completed first; a failed delivery is
// logged and swallowed and does not revert the flag.
func (d *Dispatcher) fireReminder(userID int64, description string, reminderID int64) {
	ctx := context.Background()

	if err := d.store.CompleteReminder(ctx, reminderID); err != nil {
		d.logger.Error("Failed to complete reminder",
			zap.Error(err),
			zap.Int64("reminder_id", reminderID))
	}

	d.notify(userID, fmt.Sprintf("⏰ **یادآوری:**\n🔔 %s", description))
}

func (d *Dispatcher) getSummary(ctx context.Context, userID int64) string {
	today := d.now()

	summary, err := d.store.GetDailySummary(ctx, userID, today)
	if err != nil {
		return d.storageError("get_summary", err)
	}

	return fmt.Sprintf(`📊 **خلاصه روزانه - %s**

✅ وظایف تکمیل شده: %d
📋 وظایف باقی‌مانده: %d
📝 یادداشت‌های امروز: %d
🤖 گفتگوهای AI: %d

💪 ادامه بدهید! هر قدم مهم است.`,
		today.Format("2006/01/02"),
		summary.CompletedTasks,
		summary.PendingTasks,
		summary.NotesToday,
		summary.AIExchanges)
}

func (d *Dispatcher) storageError(function string, err error) string {
	d.logger.Error("Function execution failed",
		zap.Error(err),
		zap.String("function", function))
	return "❌ خطا در اجرای عملکرد."
}
