package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/jarvis-bot/internal/models"
	"github.com/xaenox/jarvis-bot/internal/storage"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

const systemPrompt = `You are Jarvis, a helpful Persian/Farsi speaking AI assistant integrated into a Telegram bot. You can understand natural language and execute functions automatically.

IMPORTANT: You can execute the following functions by analyzing user intent:

1. add_task - When user wants to add a task/todo
   Parameters: {"description": "task description"}

2. list_tasks - When user asks to see tasks/todos
   Parameters: {}

3. complete_task - When user wants to mark a task as done
   Parameters: {"task_number": "number"}

4. add_note - When user wants to save a note
   Parameters: {"content": "note content"}

5. list_notes - When user asks to see notes
   Parameters: {}

6. set_reminder - When user wants to set a reminder
   Parameters: {"time": "time format like 30m, 2h, 1d", "description": "reminder text"}

7. get_tip - When user asks for tips or learning
   Parameters: {}

8. get_quote - When user asks for motivation or quotes
   Parameters: {}

9. get_summary - When user asks for daily summary
   Parameters: {}

EXECUTION RULES:
- If user intent matches a function, respond with: EXECUTE_FUNCTION: function_name | parameters_json
- If multiple functions needed, pick the most relevant one
- If no function needed, respond normally in Persian
- Always be conversational and helpful

Examples:
User: "یه وظیفه اضافه کن: خرید نان"
Response: EXECUTE_FUNCTION: add_task | {"description": "خرید نان"}

User: "وظیفه شماره 2 رو تمام کن"
Response: EXECUTE_FUNCTION: complete_task | {"task_number": "2"}

User: "30 دقیقه دیگر یادم بنداز قرار ملاقات دارم"
Response: EXECUTE_FUNCTION: set_reminder | {"time": "30m", "description": "قرار ملاقات"}

User: "چه خبر؟"
Response: (normal conversation in Persian)

Respond in Persian and be friendly and helpful.`

// Orchestrator sends owner messages to the completion endpoint and
// routes directive responses through the dispatcher. The caller is
// responsible for the AI feature gates; once invoked, every outcome is
// a reply string.
type Orchestrator struct {
	client       *openai.Client
	store        storage.Storage
	dispatcher   *Dispatcher
	memory       *ConversationMemory
	defaultModel string
	maxTokens    int
	temperature  float32
	logger       *zap.Logger
}

func NewOrchestrator(apiKey, baseURL, defaultModel string, maxTokens int, temperature float64,
	store storage.Storage, dispatcher *Dispatcher, memory *ConversationMemory, logger *zap.Logger) *Orchestrator {

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Orchestrator{
		client:       openai.NewClientWithConfig(clientConfig),
		store:        store,
		dispatcher:   dispatcher,
		memory:       memory,
		defaultModel: defaultModel,
		maxTokens:    maxTokens,
		temperature:  float32(temperature),
		logger:       logger,
	}
}

// Respond produces the reply for one owner message. Failures never
// touch conversation memory; memory is appended only on the success
// paths.
func (o *Orchestrator) Respond(ctx context.Context, userID int64, message string) string {
	model := o.userModel(ctx, userID)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	messages = append(messages, o.memory.History(userID)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return o.completionError(err)
	}

	if len(resp.Choices) == 0 {
		o.logger.Error("Completion response has no choices", zap.String("model", model))
		return "🚫 خطا در ارتباط با AI"
	}
	content := resp.Choices[0].Message.Content

	directive, isDirective, err := ParseDirective(content)
	if err != nil {
		o.logger.Error("Failed to parse function directive",
			zap.Error(err),
			zap.String("response", content))
		return fmt.Sprintf("❌ خطا در اجرای دستور: %v", err)
	}

	if isDirective {
		result := o.dispatcher.Execute(ctx, directive.Function, directive.Params, userID)

		// The raw directive text is discarded; memory holds the
		// dispatcher result the user actually saw.
		o.memory.AppendExchange(userID, message, result)
		o.saveConversation(ctx, userID, message, result, model)
		return result
	}

	o.memory.AppendExchange(userID, message, content)
	o.saveConversation(ctx, userID, message, content, model)
	return content
}

func (o *Orchestrator) userModel(ctx context.Context, userID int64) string {
	settings, err := o.store.GetUserSettings(ctx, userID)
	if err != nil {
		o.logger.Error("Failed to load user settings",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return o.defaultModel
	}
	if settings.AIModel == "" {
		return o.defaultModel
	}
	return settings.AIModel
}

func (o *Orchestrator) completionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		o.logger.Error("Completion request timed out", zap.Error(err))
		return "⏱️ زمان انتظار تمام شد. لطفاً دوباره تلاش کنید."
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		o.logger.Error("Completion endpoint returned an error",
			zap.Error(err),
			zap.Int("status", apiErr.HTTPStatusCode))
		return fmt.Sprintf("🚫 خطا در دریافت پاسخ AI: %d", apiErr.HTTPStatusCode)
	}

	o.logger.Error("Completion request failed", zap.Error(err))
	return "🚫 خطا در ارتباط با AI"
}

func (o *Orchestrator) saveConversation(ctx context.Context, userID int64, message, response, model string) {
	conv := &models.AIConversation{
		UserID:    userID,
		Message:   message,
		Response:  response,
		ModelUsed: model,
	}
	if err := o.store.SaveConversation(ctx, conv); err != nil {
		o.logger.Error("Failed to save AI conversation",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}
}
