package model

// Request DTOs decoded from JSON bodies. Validation of business rules (name
// required, price non-negative, enum membership) happens in the service
// layer, not here.

type CreateListRequest struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

type RenameListRequest struct {
	Name string `json:"name"`
}

// ItemRequest carries every editable field of an item. Used both for create
// and for full-field edit; the claim fields are never part of it — claims
// move only through the dedicated claim/unclaim/reset operations.
type ItemRequest struct {
	Name     string   `json:"name"`
	Image    string   `json:"image,omitempty"`
	Link1    string   `json:"link1,omitempty"`
	Link2    string   `json:"link2,omitempty"`
	Link3    string   `json:"link3,omitempty"`
	Price    float64  `json:"price"`
	Obs      string   `json:"obs,omitempty"`
	Priority Priority `json:"priority"`
	Category Category `json:"category"`
	Size     string   `json:"size,omitempty"`
	Voltage  string   `json:"voltage,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Likes       string `json:"likes"`
	Dislikes    string `json:"dislikes"`
	ShirtSize   string `json:"shirtSize"`
	PantsSize   string `json:"pantsSize"`
	ShoeSize    string `json:"shoeSize"`
}
