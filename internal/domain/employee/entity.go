package employee

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Clocks in, requests leave
	RoleManager  Role = "manager"  // Reviews leave, sees everyone's attendance
	RoleAdmin    Role = "admin"    // Manages the roster
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type Employee struct {
	ID          string
	GuildID     string
	UserID      string // Discord user snowflake
	DisplayName string
	Role        Role
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Actor is whoever triggered an operation: a slash command invoker or a
// dashboard token holder.
type Actor struct {
	GuildID     string
	UserID      string
	DisplayName string

	// GuildAdmin is set when the chat platform itself grants the caller
	// administrative rights in the guild.
	GuildAdmin bool
}
