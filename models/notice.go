package models

import "time"

// Notice is a crew announcement. It has no lifecycle of its own: it is
// owned by exactly one crew and disappears with it.
type Notice struct {
	ID             string    `json:"id" gorm:"primaryKey;size:191"`
	CrewID         string    `json:"crew_id" gorm:"not null;size:191;index"`
	Title          string    `json:"title" gorm:"not null;size:255"`
	Content        string    `json:"content" gorm:"not null;type:text"`
	AuthorID       string    `json:"author_id" gorm:"not null;size:191"`
	AuthorNickname string    `json:"author_nickname" gorm:"not null;size:255"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Crew   Crew `json:"crew" gorm:"foreignKey:CrewID"`
	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}
