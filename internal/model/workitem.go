package model

// Azure DevOps field reference names used by this app. Everything else in
// Fields is carried as-is and never interpreted.
const (
	FieldTitle         = "System.Title"
	FieldState         = "System.State"
	FieldAssignedTo    = "System.AssignedTo"
	FieldDescription   = "System.Description"
	FieldDueDate       = "Microsoft.VSTS.Scheduling.DueDate"
	FieldCompletedWork = "Microsoft.VSTS.Scheduling.CompletedWork"
	FieldRemainingWork = "Microsoft.VSTS.Scheduling.RemainingWork"
	FieldTimeSpent     = "Microsoft.VSTS.Scheduling.TimeSpent"
	FieldOriginalEst   = "Microsoft.VSTS.Scheduling.OriginalEstimate"
)

// ValidStatuses is the closed set of states accepted for update_status.
var ValidStatuses = []string{"To Do", "In Progress", "Blocked", "Done", "Removed"}

// IsValidStatus reports whether s is one of ValidStatuses (exact match,
// the backend is case-sensitive about state names).
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// WorkItem is a work item as returned by the directory backend. Fields is
// the raw field map; only the few keys above are ever read.
type WorkItem struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// WorkItemRef is a bare reference returned by WIQL queries.
type WorkItemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

func (w WorkItem) stringField(key, def string) string {
	if v, ok := w.Fields[key].(string); ok {
		return v
	}
	return def
}

func (w WorkItem) Title() string { return w.stringField(FieldTitle, "No Title") }

func (w WorkItem) State() string { return w.stringField(FieldState, "Unknown") }

// DueDate returns the raw due-date string, empty when unset.
func (w WorkItem) DueDate() string { return w.stringField(FieldDueDate, "") }

// AssignedTo returns the raw assignee value: the backend sends either a
// plain "Display Name <email>" string or an identity object.
func (w WorkItem) AssignedTo() any { return w.Fields[FieldAssignedTo] }

// TaskPriority is a work item annotated with its computed days-remaining
// value. Produced by the priority engine, never persisted.
type TaskPriority struct {
	Item          WorkItem
	DaysRemaining int
}
