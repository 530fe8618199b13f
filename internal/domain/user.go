package domain

// User represents a registered account. Usernames are stored
// lowercase-normalized and are unique.
type User struct {
	ID        int64   `json:"userid"`
	Username  string  `json:"username"`
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	Gender    string  `json:"gender"`
	DailyGoal int     `json:"daily_goal"`
}

// EquipSet is the four equipment slots a user wears. Slots hold an item
// ID or ItemNone. The set is always written atomically as a group.
type EquipSet struct {
	Hat   int `json:"hat"`
	Shirt int `json:"shirt"`
	Pants int `json:"pants"`
	Shoes int `json:"shoes"`
}

// ItemNone marks an empty equipment slot.
const ItemNone = 0
