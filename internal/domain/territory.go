package domain

// TerritoryClaim asserts one user's ownership of one map-grid cell.
// A user holds at most one claim per (lat, lng); different users may
// hold claims on the same cell (contested cells are a product decision,
// not enforced away here).
type TerritoryClaim struct {
	UserID int64   `json:"userid"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Level  int     `json:"level"`
}

// ClaimStatus is the outcome of a territory claim attempt.
type ClaimStatus string

const (
	ClaimSuccess      ClaimStatus = "success"
	ClaimAlreadyOwned ClaimStatus = "already owned"
	ClaimError        ClaimStatus = "error"
)
