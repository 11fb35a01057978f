package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DevOpsEmail  string    `json:"devops_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssigneeIdentity is the string matched against work-item assignees:
// the configured DevOps identity, or the account email when unset.
func (u User) AssigneeIdentity() string {
	if u.DevOpsEmail != "" {
		return u.DevOpsEmail
	}
	return u.Email
}

// Transcript entry types.
const (
	EntryUser = "user"
	EntryBot  = "bot"
)

// ChatEntry is one line of a user's transcript. Append-only: the bot
// writes entries but never reads them back for dispatch decisions.
type ChatEntry struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
