// Package cart keeps the client's shopping cart and persists it through an
// injected Persistence after every change.
package cart

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"food-storefront/models"
)

// MenuItem is the slice of a menu item the cart needs to display and price a line.
type MenuItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Restaurant string  `json:"restaurant"`
}

type Line struct {
	MenuItem            MenuItem                       `json:"menuItem"`
	Quantity            int                            `json:"quantity"`
	Customizations      []models.SelectedCustomization `json:"customizations"`
	SpecialInstructions string                         `json:"specialInstructions,omitempty"`
}

// UnitPrice is the item price plus every chosen customization.
func (l Line) UnitPrice() float64 {
	p := l.MenuItem.Price
	for _, c := range l.Customizations {
		p += c.Price
	}
	return p
}

func (l Line) Total() float64 { return l.UnitPrice() * float64(l.Quantity) }

func (l Line) sameAs(o Line) bool {
	return l.MenuItem.ID == o.MenuItem.ID && customizationKey(l.Customizations) == customizationKey(o.Customizations)
}

func customizationKey(cs []models.SelectedCustomization) string {
	if len(cs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(cs)
	return string(b)
}

// Persistence loads and saves the cart lines.
type Persistence interface {
	Load() ([]Line, error)
	Save([]Line) error
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	lines []Line
	p     Persistence
	log   logrus.FieldLogger
}

// New rehydrates the cart from p. Unreadable state is discarded and the cart
// starts empty.
func New(p Persistence, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{p: p, log: log}
	lines, err := p.Load()
	if err != nil {
		log.WithError(err).Warn("discarding unreadable cart")
		if err := p.Save(nil); err != nil {
			log.WithError(err).Warn("failed to reset cart")
		}
		return s
	}
	s.lines = lines
	return s
}

// AddItem merges line into an existing line with the same item and
// customizations, otherwise appends it with quantity 1.
func (s *Store) AddItem(line Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].sameAs(line) {
			s.lines[i].Quantity++
			return s.save()
		}
	}
	line.Quantity = 1
	line.Customizations = slices.Clone(line.Customizations)
	s.lines = append(s.lines, line)
	return s.save()
}

// RemoveItem drops every line for the menu item.
func (s *Store) RemoveItem(menuItemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool { return l.MenuItem.ID == menuItemID })
	return s.save()
}

// UpdateQuantity sets the quantity of the menu item's lines; q <= 0 removes them.
func (s *Store) UpdateQuantity(menuItemID string, q int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q <= 0 {
		s.lines = slices.DeleteFunc(s.lines, func(l Line) bool { return l.MenuItem.ID == menuItemID })
		return s.save()
	}
	for i := range s.lines {
		if s.lines[i].MenuItem.ID == menuItemID {
			s.lines[i].Quantity = q
		}
	}
	return s.save()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return s.save()
}

// ItemQuantity returns the quantity of the first line for menuItemID, or 0.
// Other customizations of the same item are separate lines and not counted.
func (s *Store) ItemQuantity(menuItemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.MenuItem.ID == menuItemID {
			return l.Quantity
		}
	}
	return 0
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		l.Customizations = slices.Clone(l.Customizations)
		out[i] = l
	}
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, l := range s.lines {
		total += l.Total()
	}
	return total
}

func (s *Store) save() error {
	return s.p.Save(s.lines)
}
