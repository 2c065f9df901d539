package database

import (
	"github.com/thereayou/duetchat/internal/models"
	"gorm.io/gorm"
)

// SampleSuggestions выбирает до k случайных различных строк корпуса
// для пары (категория, вид), пропуская тексты из exclude
func (d *Database) SampleSuggestions(category, kind string, k int, exclude []string) ([]models.Suggestion, error) {
	var rows []models.Suggestion

	query := d.db.Where("category = ? AND kind = ?", category, kind)
	if len(exclude) > 0 {
		query = query.Where("text NOT IN ?", exclude)
	}

	err := query.
		Order("RANDOM()").
		Limit(k).
		Find(&rows).Error

	return rows, err
}

// ReplaceSuggestions перезаливает корпус целиком (используется сидером)
func (d *Database) ReplaceSuggestions(rows []models.Suggestion) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Suggestion{}).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		return tx.Create(&rows).Error
	})
}
