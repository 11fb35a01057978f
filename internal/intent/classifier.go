package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/llm"
	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

const promptTemplate = `You are an intelligent assistant that helps manage tasks in a work-item tracker and also responds to friendly small talk.

Classify this user message:
%q

Return a JSON object with:
- action: One of [%s]
- parameters: A dictionary of relevant fields (can be empty if not needed)

IMPORTANT:
If the action is "update_status", set the status to exactly one of the following:
[%s]

Only return the JSON. No explanations.

Examples:
{"action": "smalltalk", "parameters": {}}
{"action": "create_task", "parameters": {"title": "Fix login", "description": "Bug in login flow"}}
{"action": "update_time", "parameters": {"task_title": "Fix login", "time_spent": 2, "time_remaining": 3}}
{"action": "update_status", "parameters": {"task_title": "Fix login", "status": "In Progress"}}
{"action": "update_assignment", "parameters": {"task_id": 12, "assignee": "Jane Doe <jane@example.com>"}}
{"action": "show_pending_tasks", "parameters": {}}
{"action": "delete_task", "parameters": {"task_title": "Fix login"}}`

// Classifier turns a raw message into an Intent. It never fails: a model
// error or undecodable completion becomes the unknown action.
type Classifier struct {
	llm    llm.Completer
	logger *zap.Logger
}

func NewClassifier(c llm.Completer, logger *zap.Logger) *Classifier {
	return &Classifier{llm: c, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, message string) model.Intent {
	unknown := model.Intent{Action: model.ActionUnknown, Parameters: map[string]any{}}

	prompt := fmt.Sprintf(promptTemplate, message, joinActions(), strings.Join(model.ValidStatuses, ", "))
	raw, err := c.llm.CompleteJSON(ctx, prompt)
	if err != nil {
		c.logger.Warn("intent classification failed", zap.Error(err))
		return unknown
	}

	parsed, err := Parse(raw)
	if err != nil {
		c.logger.Warn("unparsable intent output", zap.Error(err), zap.String("raw", raw))
		return unknown
	}
	return parsed
}

// Parse decodes a classifier completion. The action tag is coerced onto
// the closed set; parameters pass through untrusted for the dispatcher
// to validate.
func Parse(raw string) (model.Intent, error) {
	var decoded struct {
		Action     string         `json:"action"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &decoded); err != nil {
		return model.Intent{}, err
	}
	params := decoded.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return model.Intent{Action: model.ParseAction(decoded.Action), Parameters: params}, nil
}

// extractJSON trims code fences and surrounding prose a model sometimes
// wraps around the object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

func joinActions() string {
	tags := make([]string, 0, len(model.Actions))
	for _, a := range model.Actions {
		tags = append(tags, string(a))
	}
	return strings.Join(tags, ", ")
}
