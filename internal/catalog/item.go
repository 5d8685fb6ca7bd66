package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the position an item plays in a meal.
type Role string

const (
	RoleMain Role = "main"
	RoleSide Role = "side"
)

// DefaultEffort is used for items whose effort level is unknown.
const DefaultEffort = 1

// ErrItemNotFound is returned when an item id does not resolve.
var ErrItemNotFound = errors.New("meal item not found")

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMain:
		return RoleMain, nil
	case RoleSide:
		return RoleSide, nil
	}
	return "", fmt.Errorf("invalid role %q: must be \"main\" or \"side\"", s)
}

// Item is a cataloged dish with its tag names.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Role      Role      `json:"role"`
	Tags      []string  `json:"tags"`
	Effort    int       `json:"effort"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the item carries tag, ignoring case.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Partition splits items by role, keeping their relative order.
func Partition(items []Item) (mains, sides []Item) {
	mains = make([]Item, 0, len(items))
	sides = make([]Item, 0, len(items))
	for _, it := range items {
		switch it.Role {
		case RoleMain:
			mains = append(mains, it)
		case RoleSide:
			sides = append(sides, it)
		}
	}
	return mains, sides
}

// Index maps items by id.
func Index(items []Item) map[string]Item {
	idx := make(map[string]Item, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}

// NewItem holds the user-editable fields of an item.
type NewItem struct {
	ID     string // optional; a stable id makes Save an upsert
	Title  string
	Notes  string
	Role   Role
	Effort int
	Tags   []string
}

func (n NewItem) validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("item title is required")
	}
	if _, err := ParseRole(string(n.Role)); err != nil {
		return err
	}
	if n.Effort < 1 || n.Effort > 3 {
		return fmt.Errorf("invalid effort %d for item %q: must be 1, 2, or 3", n.Effort, n.Title)
	}
	return nil
}

// Tag is a user-owned label.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
