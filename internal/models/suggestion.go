package models

// Suggestion — строка корпуса готовых подсказок для (категория, вид)
type Suggestion struct {
	ID       uint   `gorm:"primaryKey"`
	Category string `gorm:"not null;index"`
	Kind     string `gorm:"not null;check:kind IN ('starter','reply')"`
	Text     string `gorm:"not null;uniqueIndex"`
}
