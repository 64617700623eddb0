// Package claim implements the item claim state machine.
//
// Each item moves through three states:
//
//	Available (giftedBy = null)
//	   │ Claim (visitor, identified, not the owner)
//	   ▼
//	Claimed (giftedBy set, giftedById set unless legacy)
//	   │ Unclaim (claimant)  │ OwnerReset (owner)  │ Remove (owner)
//	   ▼                     ▼                     ▼
//	Available                Available             Removed (gone from the sequence)
//
// The functions here are pure: they validate the actor's role against the
// current state and mutate the in-memory list. Persistence (rewriting the
// whole item sequence back to the store) is the caller's job, which means
// two racing transitions on the same item can both pass their guards and the
// last write wins — an accepted tradeoff of the embedded-sequence model.
package claim

import (
	"fmt"

	"github.com/rmacedo/presenteio/internal/apperror"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rs/xid"
)

// Actor is whoever is attempting a transition. ID is empty for anonymous
// visitors; DisplayName is empty when the principal's profile has no resolved
// name yet.
type Actor struct {
	ID          string
	DisplayName string
}

// Identified reports whether the actor has an authenticated principal.
func (a Actor) Identified() bool {
	return a.ID != ""
}

// IsOwner reports whether the actor owns the given list.
func (a Actor) IsOwner(list *model.List) bool {
	return a.ID != "" && a.ID == list.OwnerID
}

// Claim transitions an available item to claimed on behalf of the actor.
//
// Guards, in the order they are checked:
//   - the actor must be identified (sign-in happens before this point)
//   - the actor must have a resolved display name (otherwise the caller
//     surfaces "complete your profile" rather than defaulting one)
//   - the owner may not claim items on their own list
//   - the item must exist and be available
func Claim(list *model.List, itemID string, actor Actor) error {
	if !actor.Identified() {
		return apperror.Unauthenticated("sign in to claim a gift")
	}
	if actor.DisplayName == "" {
		return apperror.ProfileIncomplete()
	}
	if actor.IsOwner(list) {
		return apperror.Forbidden("the list owner cannot claim items on their own list")
	}

	item := list.FindItem(itemID)
	if item == nil {
		return apperror.NotFound("item", itemID)
	}
	if c, claimed := item.Claim(); claimed {
		return apperror.Conflict(fmt.Sprintf("this item was already claimed by %q", c.GifterName))
	}

	item.SetClaim(model.Claim{GifterID: actor.ID, GifterName: actor.DisplayName})
	return nil
}

// Unclaim releases a claimed item back to available. Only the claimant may
// do this: matched by principal ID when the claim carries one, by display
// name for legacy claims. The denial message names whose claim it is.
func Unclaim(list *model.List, itemID string, actor Actor) error {
	item := list.FindItem(itemID)
	if item == nil {
		return apperror.NotFound("item", itemID)
	}

	c, claimed := item.Claim()
	if !claimed {
		return apperror.Conflict("this item is not claimed")
	}
	if !c.HeldBy(actor.ID, actor.DisplayName) {
		return apperror.Forbidden(fmt.Sprintf(
			"this item was claimed by %q; only they can release it", c.GifterName))
	}

	item.ClearClaim()
	return nil
}

// OwnerReset clears a claim unconditionally. It is the owner's escape hatch
// for disputes or data correction and ignores the claimant's identity, but
// it is blocked on available items (nothing to reset).
func OwnerReset(list *model.List, itemID string, actor Actor) error {
	if !actor.IsOwner(list) {
		return apperror.Forbidden("only the list owner can reset a claim")
	}

	item := list.FindItem(itemID)
	if item == nil {
		return apperror.NotFound("item", itemID)
	}
	if !item.Claimed() {
		return apperror.Conflict("this item is not claimed")
	}

	item.ClearClaim()
	return nil
}

// Remove permanently deletes an item in any state ("already received").
// Removal is a filter-and-rewrite of the whole sequence; removing an id that
// does not exist is a no-op, not an error.
func Remove(list *model.List, itemID string, actor Actor) error {
	if !actor.IsOwner(list) {
		return apperror.Forbidden("only the list owner can remove items")
	}

	kept := make([]model.Item, 0, len(list.Items))
	for _, it := range list.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	list.Items = kept
	return nil
}

// Upsert creates a new item (itemID empty) or replaces every editable field
// of an existing one. Only the owner may do either. Creation assigns a fresh
// time-sortable id and starts available; edits preserve the id and the claim
// fields untouched.
//
// The size and voltage fields only make sense for certain categories; the
// irrelevant one is cleared, matching the entry form's behaviour.
func Upsert(list *model.List, itemID string, req model.ItemRequest, actor Actor) (string, error) {
	if !actor.IsOwner(list) {
		return "", apperror.Forbidden("only the list owner can add or edit items")
	}

	category := req.Category
	if category == "" {
		category = model.CategoryOutros
	}
	size := req.Size
	if !category.WantsSize() {
		size = ""
	}
	voltage := req.Voltage
	if !category.WantsVoltage() {
		voltage = ""
	}

	if itemID == "" {
		item := model.Item{
			ID:       xid.New().String(),
			Name:     req.Name,
			Image:    req.Image,
			Link1:    req.Link1,
			Link2:    req.Link2,
			Link3:    req.Link3,
			Price:    req.Price,
			Obs:      req.Obs,
			Priority: req.Priority,
			Category: category,
			Size:     size,
			Voltage:  voltage,
		}
		list.Items = append(list.Items, item)
		return item.ID, nil
	}

	item := list.FindItem(itemID)
	if item == nil {
		return "", apperror.NotFound("item", itemID)
	}
	item.Name = req.Name
	item.Image = req.Image
	item.Link1 = req.Link1
	item.Link2 = req.Link2
	item.Link3 = req.Link3
	item.Price = req.Price
	item.Obs = req.Obs
	item.Priority = req.Priority
	item.Category = category
	item.Size = size
	item.Voltage = voltage
	return item.ID, nil
}
