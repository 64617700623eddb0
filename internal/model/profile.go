package model

import "time"

// Profile is the owner-facing preference record shown to visitors, keyed by
// the principal's ID from the identity provider.
//
// A profile is provisioned lazily on first login. DisplayName may be empty
// when the identity provider didn't supply one — claiming a gift is blocked
// until the user fills it in.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Likes       string    `json:"likes,omitempty"`
	Dislikes    string    `json:"dislikes,omitempty"`
	ShirtSize   string    `json:"shirtSize,omitempty"`
	PantsSize   string    `json:"pantsSize,omitempty"`
	ShoeSize    string    `json:"shoeSize,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
