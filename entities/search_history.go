package entities

import (
	"time"

	"github.com/google/uuid"
)

type SearchHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID `gorm:"index" json:"user_id"`
	Query          string    `gorm:"size:255" json:"query"`
	Filters        string    `gorm:"type:text" json:"filters,omitempty"`
	ResultCount    int       `json:"result_count"`
	SearchCount    int       `json:"search_count"`
	LastSearchedAt time.Time `gorm:"index" json:"last_searched_at"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
