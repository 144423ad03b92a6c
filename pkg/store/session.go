package store

import "time"

// MaxShownProducts bounds the numbered list a session remembers.
const MaxShownProducts = 5

// Session represents the active conversation state in memory
type Session struct {
	ID string `json:"id"` // chat id

	// Customer binding, set by a successful identify
	CustomerID   *int64 `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`

	// THE WORKBENCH (product the user is comparing against)
	BaseProduct *Product `json:"base_product,omitempty"`

	// THE WAITING ROOM (last numbered list shown to the user)
	ShownProducts []Product `json:"shown_products"`

	ActiveFilters FilterSet `json:"active_filters"`
	LastActive    time.Time `json:"last_active"`
}

const (
	StateIdle       = "IDLE"
	StateIdentified = "IDENTIFIED"
	StateComparing  = "COMPARING"
)

// NewSession returns the canonical default shape for id.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:            id,
		ShownProducts: []Product{},
		ActiveFilters: FilterSet{},
		LastActive:    now,
	}
}

// State derives the dialogue state from what the session holds.
func (s *Session) State() string {
	switch {
	case s.BaseProduct != nil:
		return StateComparing
	case s.CustomerID != nil:
		return StateIdentified
	default:
		return StateIdle
	}
}

// Clone returns a deep copy. Handlers mutate the copy and commit it only
// after every external call of the turn has succeeded.
func (s *Session) Clone() *Session {
	c := *s
	if s.CustomerID != nil {
		id := *s.CustomerID
		c.CustomerID = &id
	}
	if s.BaseProduct != nil {
		p := s.BaseProduct.Clone()
		c.BaseProduct = &p
	}
	c.ShownProducts = make([]Product, len(s.ShownProducts))
	for i, p := range s.ShownProducts {
		c.ShownProducts[i] = p.Clone()
	}
	c.ActiveFilters = s.ActiveFilters.Clone()
	return &c
}

// ReplaceShown swaps the numbered list wholesale, keeping at most MaxShownProducts.
func (s *Session) ReplaceShown(products []Product) {
	n := len(products)
	if n > MaxShownProducts {
		n = MaxShownProducts
	}
	s.ShownProducts = make([]Product, n)
	copy(s.ShownProducts, products[:n])
}
