// Package view derives the per-actor rendering of a list from its latest
// snapshot.
//
// A view session keeps only two pieces of local state — the active category
// filter and the sort key — and recomputes the projection from scratch on
// every snapshot. Stored item order is never mutated: filtering and sorting
// work on a copy, and ties keep snapshot (insertion) order.
package view

import (
	"net/url"
	"sort"
	"strings"

	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
)

// Sort keys.
const (
	SortPriority = "priority" // fixed rank Alta=3/Média=2/Baixa=1, descending
	SortValue    = "value"    // price, ascending
)

// FilterAll is the category filter's default: show everything.
const FilterAll = "Todas"

// Options is the session-local projection state.
type Options struct {
	Category string // FilterAll or a model.Category value
	Sort     string // SortPriority or SortValue
}

// DefaultOptions matches a freshly opened list view.
func DefaultOptions() Options {
	return Options{Category: FilterAll, Sort: SortPriority}
}

// StoreLink is an item's store link with the extracted domain, which the
// client uses for the favicon-by-domain icon. A link whose domain cannot be
// extracted still renders, just without an icon.
type StoreLink struct {
	URL    string `json:"url"`
	Domain string `json:"domain,omitempty"`
}

// ItemView is one item as a given actor is allowed to see it.
//
// GiftedBy carries the claimant's display name — shown plainly to the owner
// (for the reset affordance) and as "already claimed by X" to visitors. The
// claimant's principal ID is never projected; ClaimedByMe is all a visitor
// needs to recognise their own pledge.
type ItemView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Image       string         `json:"image,omitempty"`
	Links       []StoreLink    `json:"links,omitempty"`
	Price       float64        `json:"price"`
	Obs         string         `json:"obs,omitempty"`
	Priority    model.Priority `json:"priority"`
	Category    model.Category `json:"category"`
	Size        string         `json:"size,omitempty"`
	Voltage     string         `json:"voltage,omitempty"`
	Claimed     bool           `json:"claimed"`
	GiftedBy    string         `json:"giftedBy,omitempty"`
	ClaimedByMe bool           `json:"claimedByMe"`
	CanClaim    bool           `json:"canClaim"`
	CanUnclaim  bool           `json:"canUnclaim"`
	CanReset    bool           `json:"canReset"`
	CanEdit     bool           `json:"canEdit"`
	CanRemove   bool           `json:"canRemove"`
}

// ListView is the full per-actor rendering of a list.
type ListView struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Color     model.Color `json:"color"`
	OwnerID   string      `json:"ownerId"`
	OwnerName string      `json:"ownerName"`
	IsOwner   bool        `json:"isOwner"`
	Items     []ItemView  `json:"items"`
}

// Render projects a list snapshot for the given actor with the session's
// filter and sort applied.
func Render(list *model.List, actor claim.Actor, opts Options) ListView {
	return ListView{
		ID:        list.ID,
		Code:      list.Code,
		Name:      list.Name,
		Color:     list.Color,
		OwnerID:   list.OwnerID,
		OwnerName: list.OwnerName,
		IsOwner:   actor.IsOwner(list),
		Items:     Project(list, actor, opts),
	}
}

// Project filters, projects and sorts the item sequence for one actor.
func Project(list *model.List, actor claim.Actor, opts Options) []ItemView {
	if opts.Category == "" {
		opts.Category = FilterAll
	}
	if opts.Sort == "" {
		opts.Sort = SortPriority
	}

	views := make([]ItemView, 0, len(list.Items))
	for _, item := range list.Items {
		category := item.Category
		if category == "" {
			category = model.CategoryOutros
		}
		if opts.Category != FilterAll && string(category) != opts.Category {
			continue
		}
		views = append(views, projectItem(list, item, category, actor))
	}

	switch opts.Sort {
	case SortValue:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Price < views[j].Price
		})
	default:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Priority.Rank() > views[j].Priority.Rank()
		})
	}

	return views
}

func projectItem(list *model.List, item model.Item, category model.Category, actor claim.Actor) ItemView {
	perms := claim.PermissionsFor(list, item, actor)

	v := ItemView{
		ID:         item.ID,
		Name:       item.Name,
		Image:      item.Image,
		Links:      storeLinks(item),
		Price:      item.Price,
		Obs:        item.Obs,
		Priority:   item.Priority,
		Category:   category,
		Size:       item.Size,
		Voltage:    item.Voltage,
		CanClaim:   perms.CanClaim,
		CanUnclaim: perms.CanUnclaim,
		CanReset:   perms.CanReset,
		CanEdit:    perms.CanEdit,
		CanRemove:  perms.CanRemove,
	}

	if c, claimed := item.Claim(); claimed {
		v.Claimed = true
		v.GiftedBy = c.GifterName
		v.ClaimedByMe = c.HeldBy(actor.ID, actor.DisplayName)
	}

	return v
}

func storeLinks(item model.Item) []StoreLink {
	var links []StoreLink
	for _, raw := range []string{item.Link1, item.Link2, item.Link3} {
		if raw == "" {
			continue
		}
		links = append(links, StoreLink{URL: raw, Domain: Domain(raw)})
	}
	return links
}

// Domain extracts the hostname of a store URL without the "www." prefix.
// Returns "" when the URL doesn't parse — the link renders without an icon.
func Domain(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
