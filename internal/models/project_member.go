package models

import "time"

type ProjectMember struct {
	ID        uint64    `gorm:"primarykey" json:"-"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:uk_project_member" json:"project_id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_project_member;index" json:"user_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type ProjectAdmin struct {
	ID        uint64    `gorm:"primarykey" json:"-"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:uk_project_admin" json:"project_id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_project_admin;index" json:"user_id"`
	GrantedAt time.Time `gorm:"autoCreateTime" json:"granted_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
