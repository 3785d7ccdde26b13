package domain

// Event is a domain event emitted after a committed call.
type Event interface {
	EventName() string
}

// KittyCreated is emitted by create and breed.
type KittyCreated struct {
	Owner   AccountID `json:"owner"`
	KittyID KittyID   `json:"kitty_id"`
}

// EventName implements Event.
func (KittyCreated) EventName() string { return "created" }

// KittyTransferred is emitted by transfer.
type KittyTransferred struct {
	From    AccountID `json:"from"`
	To      AccountID `json:"to"`
	KittyID KittyID   `json:"kitty_id"`
}

// EventName implements Event.
func (KittyTransferred) EventName() string { return "transferred" }
