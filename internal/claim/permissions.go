package claim

import "github.com/rmacedo/presenteio/internal/model"

// Permissions is the read-side of the state machine: which affordances an
// actor gets on a single item. The view layer turns these into the rendered
// projection.
//
// The visibility rule lives here: a claimed item belonging to someone else
// is rendered claimed-but-opaque (no affordances, dimmed) for other
// visitors, and the owner — who sees the claimant's name plainly for the
// reset affordance — is never offered the claim affordance at all.
type Permissions struct {
	CanClaim   bool
	CanUnclaim bool
	CanReset   bool
	CanEdit    bool
	CanRemove  bool
}

// PermissionsFor computes the actor's affordances on one item of a list.
func PermissionsFor(list *model.List, item model.Item, actor Actor) Permissions {
	if actor.IsOwner(list) {
		return Permissions{
			CanReset:  item.Claimed(),
			CanEdit:   true,
			CanRemove: true,
		}
	}

	c, claimed := item.Claim()
	if !claimed {
		return Permissions{CanClaim: true}
	}
	if c.HeldBy(actor.ID, actor.DisplayName) {
		return Permissions{CanUnclaim: true}
	}
	// Someone else's pledge: opaque, nothing allowed.
	return Permissions{}
}
