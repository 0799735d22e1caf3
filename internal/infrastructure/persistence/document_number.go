package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextDocumentNumber generates the next sequential document number in the
// format PREFIX-YYYY-NNNNN (e.g. PO-2026-00001). The sequence restarts each
// year. Generation scans the highest existing number and verifies uniqueness
// before returning, retrying on collision with a concurrent writer.
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, column, docPrefix string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", docPrefix, year)

	var numbers []string
	err := db.WithContext(ctx).Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil {
		return "", err
	}

	var nextNum int64 = 1
	if len(numbers) > 0 {
		parts := strings.Split(numbers[0], "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	for i := 0; i < 100; i++ {
		var count int64
		if err := db.WithContext(ctx).Model(model).
			Where(column+" = ?", number).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
		nextNum++
		number = fmt.Sprintf("%s%05d", prefix, nextNum)
	}

	return "", fmt.Errorf("unable to generate a unique document number with prefix %s", prefix)
}
