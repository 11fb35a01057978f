package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/backlog"
	"github.com/harsha86604/Backlog-excellence-bot/internal/devops"
	"github.com/harsha86604/Backlog-excellence-bot/internal/llm"
	"github.com/harsha86604/Backlog-excellence-bot/internal/model"
)

const fallbackReply = "Sorry, I didn't understand that. Please rephrase."

// IntentClassifier is what the dispatcher needs from the classifier.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) model.Intent
}

// Bot dispatches one chat turn: classify, fetch the live backlog, run
// exactly one action, answer with text. It holds no per-turn state; the
// transcript is the caller's concern.
type Bot struct {
	directory  devops.Directory
	classifier IntentClassifier
	llm        llm.Completer
	logger     *zap.Logger
	now        func() time.Time
}

func New(directory devops.Directory, classifier IntentClassifier, completer llm.Completer, logger *zap.Logger) *Bot {
	return &Bot{
		directory:  directory,
		classifier: classifier,
		llm:        completer,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleMessage runs a full turn and always returns response text. Every
// failure below this point is converted into a readable reply; nothing
// escapes as an error.
func (b *Bot) HandleMessage(ctx context.Context, message string, user model.User) string {
	in := b.classifier.Classify(ctx, message)
	b.logger.Info("classified message",
		zap.Int64("user_id", user.ID),
		zap.String("action", string(in.Action)),
	)

	switch in.Action {
	case model.ActionSmalltalk:
		// Straight to the model, no backlog fetch, no dispatch.
		return llm.Respond(ctx, b.llm, message)
	case model.ActionUnknown:
		return fallbackReply
	}

	items, err := b.directory.FetchAll(ctx)
	if err != nil {
		return b.remediate(ctx, err)
	}

	switch in.Action {
	case model.ActionCreateTask:
		return b.createTask(ctx, in, user)
	case model.ActionUpdateTime:
		return b.updateTime(ctx, in, items)
	case model.ActionUpdateAssignment:
		return b.updateAssignment(ctx, in)
	case model.ActionUpdateStatus:
		return b.updateStatus(ctx, in, items)
	case model.ActionDeleteTask:
		return b.deleteTask(ctx, in, items)
	case model.ActionListAllTasks:
		return withHeading("All work items:", backlog.FormatItems(items))
	case model.ActionShowMyTasks:
		mine := backlog.AssignedTo(items, user.AssigneeIdentity())
		if len(mine) == 0 {
			return "No tasks assigned to you."
		}
		return withHeading("Your tasks:", backlog.FormatItems(mine))
	case model.ActionShowPriorityTasks:
		return b.priorityReport(items, message, user)
	case model.ActionSummarizeTasks:
		return b.summarize(ctx, items, message, user)
	case model.ActionShowPendingTasks:
		pending := backlog.Pending(items)
		if len(pending) == 0 {
			return "No pending tasks found."
		}
		return withHeading("Pending tasks:", backlog.FormatItems(pending))
	case model.ActionShowCompletedTasks:
		completed := backlog.Completed(items)
		if len(completed) == 0 {
			return "No completed tasks found."
		}
		return withHeading("Completed tasks:", backlog.FormatItems(completed))
	default:
		return fallbackReply
	}
}

func (b *Bot) createTask(ctx context.Context, in model.Intent, user model.User) string {
	title, ok := in.StringParam("title")
	if !ok {
		return notFound("title")
	}
	description, _ := in.StringParam("description")
	dueDate, _ := in.StringParam("due_date")
	assignee := user.AssigneeIdentity()

	id, err := b.directory.Create(ctx, title, description, assignee, dueDate, "")
	if err != nil {
		return b.remediate(ctx, err)
	}
	return fmt.Sprintf("Task '%s' created with ID %d.", title, id)
}

func (b *Bot) updateTime(ctx context.Context, in model.Intent, items []model.WorkItem) string {
	fragment, ok := in.StringParam("task_title")
	if !ok {
		return notFound("task_title")
	}
	spent, okSpent := in.NumberParam("time_spent")
	if !okSpent {
		return notFound("time_spent")
	}
	remaining, okRemaining := in.NumberParam("time_remaining")
	if !okRemaining {
		return notFound("time_remaining")
	}

	matched := backlog.Resolve(fragment, items)
	if matched == nil {
		return notFound(fragment)
	}
	if err := b.directory.UpdateTimeFields(ctx, matched.ID, spent, remaining); err != nil {
		return b.remediate(ctx, err)
	}
	return fmt.Sprintf("Updated '%s' with time spent = %v, remaining = %v.", fragment, spent, remaining)
}

func (b *Bot) updateAssignment(ctx context.Context, in model.Intent) string {
	id, okID := in.IntParam("task_id")
	assignee, okAssignee := in.StringParam("assignee")
	if !okID {
		return notFound("task_id")
	}
	if !okAssignee {
		return notFound("assignee")
	}

	if err := b.directory.UpdateAssignment(ctx, id, assignee); err != nil {
		return b.remediate(ctx, err)
	}
	return fmt.Sprintf("Task %d assigned to %s.", id, assignee)
}

func (b *Bot) updateStatus(ctx context.Context, in model.Intent, items []model.WorkItem) string {
	fragment, okTitle := in.StringParam("task_title")
	status, okStatus := in.StringParam("status")
	if !okTitle {
		return notFound("task_title")
	}
	if !okStatus {
		return notFound("status")
	}

	matched := backlog.Resolve(fragment, items)
	if matched == nil {
		return notFound(fragment)
	}
	if !model.IsValidStatus(status) {
		b.logger.Warn("status outside the known set, backend decides",
			zap.String("status", status))
	}
	// An out-of-enum status is sent as-is: the backend's rejection comes
	// back through the remediation path instead of a silent coercion.
	if err := b.directory.UpdateStatus(ctx, matched.ID, status); err != nil {
		return b.remediate(ctx, err)
	}
	return fmt.Sprintf("Task '%s' status updated to %s.", fragment, status)
}

func (b *Bot) deleteTask(ctx context.Context, in model.Intent, items []model.WorkItem) string {
	fragment, ok := in.StringParam("task_title")
	if !ok {
		return notFound("task_title")
	}
	matched := backlog.Resolve(fragment, items)
	if matched == nil {
		return notFound(fragment)
	}
	if err := b.directory.Delete(ctx, matched.ID); err != nil {
		return b.remediate(ctx, err)
	}
	return fmt.Sprintf("Task '%s' has been deleted.", fragment)
}

func (b *Bot) priorityItems(items []model.WorkItem, message string, user model.User) []model.TaskPriority {
	// "my priority tasks" narrows to the caller's assignee identity,
	// otherwise the whole backlog is considered.
	filter := ""
	if strings.Contains(strings.ToLower(message), "my") {
		filter = user.AssigneeIdentity()
	}
	return backlog.HighPriority(items, b.now(), filter)
}

func (b *Bot) priorityReport(items []model.WorkItem, message string, user model.User) string {
	filtered := b.priorityItems(items, message, user)
	if len(filtered) == 0 {
		return "No high-priority tasks."
	}
	return fmt.Sprintf("%d high-priority tasks: %s", len(filtered), backlog.FormatPriority(filtered))
}

// summarize reports the high-priority slice and asks the model for a
// short narrative over the top of the list.
func (b *Bot) summarize(ctx context.Context, items []model.WorkItem, message string, user model.User) string {
	filtered := b.priorityItems(items, message, user)
	if len(filtered) == 0 {
		return "No high-priority tasks."
	}
	report := fmt.Sprintf("%d high-priority tasks: %s", len(filtered), backlog.FormatPriority(filtered))

	sample := filtered
	if len(sample) > 5 {
		sample = sample[:5]
	}
	var sb strings.Builder
	for _, p := range sample {
		fmt.Fprintf(&sb, "- %s (State: %s, %s)\n", p.Item.Title(), p.Item.State(), backlog.DueLabel(p.DaysRemaining))
	}
	prompt := fmt.Sprintf("Based on these tasks:\n%s\nProvide a concise summary of where this backlog needs attention.", sb.String())
	return report + "\n" + llm.Respond(ctx, b.llm, prompt)
}

// remediate turns a backend failure into a plain-language explanation.
// The raw error is logged, never echoed to the user.
func (b *Bot) remediate(ctx context.Context, cause error) string {
	b.logger.Error("backend call failed", zap.Error(cause))
	prompt := fmt.Sprintf(`You're a helpful assistant. The following error occurred in a work-item tracker integration while handling a user's request:

Error:
%q

Please explain the issue in simple terms for a non-technical user and suggest what they could do next (if applicable).`, cause.Error())
	return llm.Respond(ctx, b.llm, prompt)
}

func notFound(name string) string {
	return fmt.Sprintf("Task '%s' not found.", name)
}

func withHeading(heading, body string) string {
	if body == "" {
		return heading
	}
	return heading + "\n" + body
}
