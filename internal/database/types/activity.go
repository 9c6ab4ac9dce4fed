package types

import "github.com/uptrace/bun"

// ActivityRecord is a tracked subject whose next occurrence is announced to
// a webhook owned by a guild.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:activity_data"`

	SubjectID    string `bun:",pk"                  json:"subjectId"`
	OwnerID      string `bun:",pk"                  json:"ownerId"`
	FireAt       int64  `bun:",notnull"             json:"fireAt"` // Unix seconds
	NotifyTarget string `bun:",notnull"             json:"notifyTarget"`
	Episode      string `bun:",notnull,default:''"  json:"episode"`
	DisplayName  string `bun:",notnull,default:''"  json:"displayName"`
	DelaySeconds int64  `bun:",notnull,default:0"   json:"delaySeconds"`
	Image        string `bun:",notnull,default:''"  json:"image"`
}
