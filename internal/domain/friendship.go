package domain

// FriendshipStatus is the stored state of a relationship record.
// A relationship that has no record is "absent" and has no status value.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is one relationship record for an unordered user pair.
// At most one record exists per pair. While pending the record is
// directional: UserID is the requester and FriendID the target.
type Friendship struct {
	UserID   int64            `json:"userid"`
	FriendID int64            `json:"friendid"`
	Status   FriendshipStatus `json:"status"`
}
