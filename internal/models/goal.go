package models

// Goal is the single target balance per owner. A zero target means unset.
type Goal struct {
	OwnerID string  `json:"owner_id"`
	Target  float64 `json:"target"`
}
