package model

import (
	"fmt"
	"strings"
)

// Category is one of the two fixed classification labels.
type Category string

const (
	CategoryProductive   Category = "Produtivo"
	CategoryUnproductive Category = "Improdutivo"
)

// Categories lists every label in a stable order.
var Categories = []Category{CategoryProductive, CategoryUnproductive}

// Dir returns the storage directory name for the category.
func (c Category) Dir() string {
	return strings.ToLower(string(c))
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory maps a label or directory name onto one of the fixed categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if c.Dir() == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}
