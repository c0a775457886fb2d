package database

import (
	"time"

	"github.com/uptrace/bun"
)

// Timestamps carries the audit columns shared by every table. It is embedded
// as a value type rather than inherited; bun flattens the fields into the
// owning model.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	Email          string `bun:"email,unique,notnull" json:"email"`
	HashedPassword string `bun:"hashed_password,notnull" json:"-"` // Never expose password hash in JSON
	FName          string `bun:"fname" json:"fname"`
	LName          string `bun:"lname" json:"lname"`
	Timestamps

	Todos []*Todo `bun:"rel:has-many,join:id=owner_id" json:"todos,omitempty"`
}

type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Text      string `bun:"text,notnull" json:"text"`
	Completed bool   `bun:"completed,notnull,default:false" json:"completed"`
	OwnerID   int64  `bun:"owner_id,notnull" json:"owner_id"`
	Timestamps

	Owner *User `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
}
