// Package model defines the data structures shared across the application.
package model

import (
	"strings"
	"time"
)

// Color is the fixed palette a list owner can pick from. The value is stored
// as-is and interpreted by the client's theme.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
)

// DefaultColor is applied when a list is created without a color choice.
const DefaultColor = ColorBlue

// Valid reports whether c is one of the palette colors.
func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorRed, ColorGreen, ColorPurple, ColorOrange, ColorPink:
		return true
	}
	return false
}

// Priority of an item. The values are the user-facing Portuguese labels and
// double as the stored representation, so they are data, not display strings.
type Priority string

const (
	PriorityAlta  Priority = "Alta"
	PriorityMedia Priority = "Média"
	PriorityBaixa Priority = "Baixa"
)

// Rank returns the fixed sort rank: Alta=3, Média=2, Baixa=1.
// Unknown values rank below Baixa so malformed data sinks to the bottom.
func (p Priority) Rank() int {
	switch p {
	case PriorityAlta:
		return 3
	case PriorityMedia:
		return 2
	case PriorityBaixa:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Category of an item, from a fixed set. CategoryOutros is the default for
// items created without one (including legacy documents).
type Category string

const (
	CategoryBrinquedos  Category = "Brinquedos"
	CategoryLego        Category = "Lego"
	CategoryRoupas      Category = "Roupas"
	CategoryCalcados    Category = "Calçados"
	CategoryEletronicos Category = "Eletrônicos"
	CategoryLivros      Category = "Livros"
	CategoryCasa        Category = "Casa"
	CategoryBeleza      Category = "Beleza"
	CategoryAcessorios  Category = "Acessórios"
	CategoryGames       Category = "Games"
	CategoryOutros      Category = "Outros"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryBrinquedos,
	CategoryLego,
	CategoryRoupas,
	CategoryCalcados,
	CategoryEletronicos,
	CategoryLivros,
	CategoryCasa,
	CategoryBeleza,
	CategoryAcessorios,
	CategoryGames,
	CategoryOutros,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// WantsSize reports whether the size field is relevant for this category
// (clothing and footwear only).
func (c Category) WantsSize() bool {
	return c == CategoryRoupas || c == CategoryCalcados
}

// WantsVoltage reports whether the voltage field is relevant for this
// category (electronics, home and beauty appliances).
func (c Category) WantsVoltage() bool {
	return c == CategoryEletronicos || c == CategoryCasa || c == CategoryBeleza
}

// Claim records who pledged to give an item. It is a tagged variant with two
// shapes:
//
//   - ByPrincipal: GifterID and GifterName both set — the normal case, the
//     claim was made by an authenticated principal.
//   - LegacyByName: GifterID empty, GifterName set — claims made before
//     identity tracking existed. Ownership checks fall back to comparing the
//     display name.
//
// A nil *Claim on an Item means the item is available.
type Claim struct {
	GifterName string
	GifterID   string
}

// Legacy reports whether this is a name-only claim with no principal attached.
func (c Claim) Legacy() bool {
	return c.GifterID == ""
}

// HeldBy reports whether the claim belongs to the given actor. When the claim
// carries a principal ID the match is by ID; for legacy claims the match falls
// back to a case-insensitive display-name comparison.
func (c Claim) HeldBy(principalID, displayName string) bool {
	if !c.Legacy() {
		return principalID != "" && c.GifterID == principalID
	}
	return displayName != "" && strings.EqualFold(c.GifterName, displayName)
}

// Item is a single wish inside a list. Items travel embedded in their list
// document: every mutation rewrites the whole sequence.
//
// The claim state is externally observable from GiftedBy alone: an item is
// claimed iff GiftedBy is non-nil. GiftedByID may be nil even on claimed
// items (legacy data) — see Claim.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Image      string   `json:"image,omitempty"`
	Link1      string   `json:"link1,omitempty"`
	Link2      string   `json:"link2,omitempty"`
	Link3      string   `json:"link3,omitempty"`
	Price      float64  `json:"price"`
	Obs        string   `json:"obs,omitempty"`
	Priority   Priority `json:"priority"`
	Category   Category `json:"category"`
	Size       string   `json:"size,omitempty"`
	Voltage    string   `json:"voltage,omitempty"`
	GiftedBy   *string  `json:"giftedBy"`
	GiftedByID *string  `json:"giftedById,omitempty"`
}

// Claimed reports whether the item has been pledged by someone.
func (it Item) Claimed() bool {
	return it.GiftedBy != nil && *it.GiftedBy != ""
}

// Claim returns the claim record and true when the item is claimed.
func (it Item) Claim() (Claim, bool) {
	if !it.Claimed() {
		return Claim{}, false
	}
	c := Claim{GifterName: *it.GiftedBy}
	if it.GiftedByID != nil {
		c.GifterID = *it.GiftedByID
	}
	return c, true
}

// SetClaim marks the item as claimed by the given claim record.
func (it *Item) SetClaim(c Claim) {
	name := c.GifterName
	it.GiftedBy = &name
	if c.GifterID != "" {
		id := c.GifterID
		it.GiftedByID = &id
	} else {
		it.GiftedByID = nil
	}
}

// ClearClaim returns the item to the available state.
func (it *Item) ClearClaim() {
	it.GiftedBy = nil
	it.GiftedByID = nil
}

// List is a gift list. OwnerName is denormalized from the owner's profile so
// the list can be displayed without a join; it is rewritten by the profile
// rename fan-out and may be transiently stale.
type List struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Color     Color     `json:"color"`
	OwnerID   string    `json:"ownerId"`
	OwnerName string    `json:"ownerName"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []Item    `json:"items"`
}

// FindItem returns a pointer into the list's item sequence, or nil when no
// item has the given id.
func (l *List) FindItem(id string) *Item {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}
