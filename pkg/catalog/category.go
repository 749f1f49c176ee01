package catalog

import (
	"strings"
	"time"

	"github.com/matzehuels/stairbuilder/pkg/errors"
)

// CategoryType groups categories in selectors.
type CategoryType string

const (
	CategoryStair     CategoryType = "stair"
	CategoryComponent CategoryType = "component"
	CategoryAccessory CategoryType = "accessory"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryStair, CategoryComponent, CategoryAccessory:
		return true
	}
	return false
}

// Category classifies models.
type Category struct {
	ID          string       `json:"id" toml:"id" yaml:"id"`
	Name        string       `json:"name" toml:"name" yaml:"name"`
	Description string       `json:"description" toml:"description" yaml:"description"`
	Type        CategoryType `json:"type" toml:"type" yaml:"type"`
	IsCustom    bool         `json:"isCustom" toml:"is_custom" yaml:"isCustom"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty" toml:"created_at,omitempty" yaml:"createdAt,omitempty"`
}

// CategoryUpdate changes the non-nil fields of a custom category.
type CategoryUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Type        *CategoryType `json:"type,omitempty"`
}

// Option is a value/label pair for select inputs.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Problems lists every validation failure of c.
func (c Category) Problems() []string {
	var out []string
	if c.ID == "" {
		out = append(out, "Category ID is required")
	} else if err := errors.ValidateCategoryID(c.ID); err != nil {
		out = append(out, errors.UserMessage(err))
	}
	if strings.TrimSpace(c.Name) == "" {
		out = append(out, "Category name is required")
	}
	if c.Type == "" {
		out = append(out, "Category type is required")
	} else if !c.Type.Valid() {
		out = append(out, "Category type must be stair, component, or accessory")
	}
	return out
}

// Validate returns an INVALID_CATEGORY error listing every problem, or nil.
func (c Category) Validate() error {
	if p := c.Problems(); len(p) > 0 {
		return errors.New(errors.ErrCodeInvalidCategory, "%s", strings.Join(p, "; "))
	}
	return nil
}
