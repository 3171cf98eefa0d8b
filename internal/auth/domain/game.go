package domain

import "time"

// Game is the registry entry devices authenticate against. The wider product
// owns games; this service only needs existence and a name for operators.
type Game struct {
	ID        string // UUID
	Name      string
	CreatedAt time.Time
}
