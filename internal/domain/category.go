package domain

import "time"

// MaxCategoryLevel is the deepest allowed nesting (three levels, zero-based).
const MaxCategoryLevel = 2

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parentId,omitempty"`
	Level       int       `json:"level"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryWithCount decorates a category with its product count for the
// public category listing.
type CategoryWithCount struct {
	Category
	ProductCount int `json:"productCount"`
}
