package model

import "math"

// Action is a classified user intent. The set is closed: anything the
// classifier produces outside of it is coerced to ActionUnknown.
type Action string

const (
	ActionCreateTask         Action = "create_task"
	ActionUpdateTime         Action = "update_time"
	ActionUpdateAssignment   Action = "update_assignment"
	ActionUpdateStatus       Action = "update_status"
	ActionListAllTasks       Action = "list_all_tasks"
	ActionShowMyTasks        Action = "show_my_tasks"
	ActionDeleteTask         Action = "delete_task"
	ActionShowPriorityTasks  Action = "show_priority_tasks"
	ActionSummarizeTasks     Action = "summarize_tasks"
	ActionShowPendingTasks   Action = "show_pending_tasks"
	ActionShowCompletedTasks Action = "show_completed_tasks"
	ActionSmalltalk          Action = "smalltalk"
	ActionUnknown            Action = "unknown"
)

// Actions lists every recognized action, unknown included.
var Actions = []Action{
	ActionCreateTask, ActionUpdateTime, ActionUpdateAssignment,
	ActionUpdateStatus, ActionListAllTasks, ActionShowMyTasks,
	ActionDeleteTask, ActionShowPriorityTasks, ActionSummarizeTasks,
	ActionShowPendingTasks, ActionShowCompletedTasks, ActionSmalltalk,
	ActionUnknown,
}

// ParseAction maps a raw classifier tag onto the closed action set.
func ParseAction(s string) Action {
	for _, a := range Actions {
		if Action(s) == a {
			return a
		}
	}
	return ActionUnknown
}

// Intent is the structured classification of one user message. Parameters
// come straight from the language model and are untrusted: the dispatcher
// validates every value before use.
type Intent struct {
	Action     Action         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// StringParam returns a non-empty string parameter.
func (i Intent) StringParam(key string) (string, bool) {
	v, ok := i.Parameters[key].(string)
	return v, ok && v != ""
}

// NumberParam returns a numeric parameter. JSON decoding yields float64,
// but a classifier sometimes quotes numbers, so strings are not accepted
// to keep the contract strict; such intents fail dispatch validation.
func (i Intent) NumberParam(key string) (float64, bool) {
	switch v := i.Parameters[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// IntParam is NumberParam restricted to whole numbers, for id-like
// parameters where truncating a fraction would target the wrong item.
func (i Intent) IntParam(key string) (int, bool) {
	v, ok := i.NumberParam(key)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
