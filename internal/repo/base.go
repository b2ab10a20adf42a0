package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// First loads the first row of T matching the condition. Missing rows surface
// gorm.ErrRecordNotFound unchanged.
func First[T any](ctx context.Context, b Base, query string, args ...any) (*T, error) {
	var out T
	if err := b.DB(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Exists reports whether any row matches the scoped query.
func Exists(scoped *gorm.DB) (bool, error) {
	var count int64
	if err := scoped.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
