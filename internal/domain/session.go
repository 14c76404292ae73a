package domain

import "time"

// Session представляет пользовательскую сессию для веб-авторизации.
// Запись на сервере является источником истины, cookie хранит только токен.
type Session struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;size:36;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}

// IsExpired проверяет, истекла ли сессия
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid проверяет, является ли сессия валидной
func (s *Session) IsValid() bool {
	return !s.IsExpired() && s.Token != ""
}
