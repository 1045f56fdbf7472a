package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	IsActive     bool   `gorm:"not null" json:"isActive"`

	// Presence, written only by the presence tracker.
	IsOnline  bool       `gorm:"not null;default:false;index" json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen"`
	LastLogin *time.Time `json:"lastLogin"`
}

type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      Role       `json:"role"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsOnline:  u.IsOnline,
		LastSeen:  u.LastSeen,
	}
}

// ContactResponse is the directory entry shown in the chat contact list.
type ContactResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

func (u *User) ToContact() ContactResponse {
	return ContactResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}

// UserSummary is the minimal user shape embedded in message records.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PresenceRecord is the online state of a single user.
type PresenceRecord struct {
	UserID   uint       `json:"userId" msgpack:"u"`
	IsOnline bool       `json:"isOnline" msgpack:"o"`
	LastSeen *time.Time `json:"lastSeen" msgpack:"l"`
}

func (u *User) Presence() PresenceRecord {
	return PresenceRecord{
		UserID:   u.ID,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}
