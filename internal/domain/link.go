package domain

import "time"

// Link представляет сокращенную ссылку.
// URL и Code уникальны: один URL всегда соответствует одной записи.
type Link struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	URL       string    `gorm:"column:url;size:2048;uniqueIndex;not null" json:"url"`
	Code      string    `gorm:"column:code;size:16;uniqueIndex;not null" json:"code"`
	Title     string    `gorm:"column:title;size:500" json:"title"`
	Visits    int64     `gorm:"column:visits;not null;default:0" json:"visits"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Clicks []Click `gorm:"foreignKey:LinkID" json:"clicks,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}
