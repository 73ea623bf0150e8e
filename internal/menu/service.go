package menu

import (
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

// Service exposes read access to the static catalog.
type Service interface {
	ListItems(category *enums.MenuCategory) []Item
	FindItem(id string) (*Item, error)
	ListExtras(category *enums.ExtraCategory) []Extra
	FindExtra(id string) (*Extra, error)
}

type service struct {
	items  []Item
	extras []Extra

	itemsByID  map[string]Item
	extrasByID map[string]Extra
}

// NewService builds a catalog service over the built-in menu data.
func NewService() Service {
	itemsByID := make(map[string]Item, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}
	extrasByID := make(map[string]Extra, len(extras))
	for _, extra := range extras {
		extrasByID[extra.ID] = extra
	}
	return &service{
		items:      items,
		extras:     extras,
		itemsByID:  itemsByID,
		extrasByID: extrasByID,
	}
}

func (s *service) ListItems(category *enums.MenuCategory) []Item {
	if category == nil {
		out := make([]Item, len(s.items))
		copy(out, s.items)
		return out
	}
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.Category == *category {
			out = append(out, item)
		}
	}
	return out
}

func (s *service) FindItem(id string) (*Item, error) {
	item, ok := s.itemsByID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return &item, nil
}

func (s *service) ListExtras(category *enums.ExtraCategory) []Extra {
	if category == nil {
		out := make([]Extra, len(s.extras))
		copy(out, s.extras)
		return out
	}
	out := make([]Extra, 0, len(s.extras))
	for _, extra := range s.extras {
		if extra.Category == *category {
			out = append(out, extra)
		}
	}
	return out
}

func (s *service) FindExtra(id string) (*Extra, error) {
	extra, ok := s.extrasByID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "extra not found")
	}
	return &extra, nil
}
