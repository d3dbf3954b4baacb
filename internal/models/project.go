package models

import "time"

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Admins  []ProjectAdmin  `gorm:"foreignKey:ProjectID" json:"admins,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// HasMember reports whether userID is in the project's member set.
// Members must be preloaded.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// HasAdmin reports whether userID is in the project's admin set.
// Admins must be preloaded.
func (p *Project) HasAdmin(userID string) bool {
	for _, a := range p.Admins {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
