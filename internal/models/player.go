package models

import "time"

// Player is a guest identity issued by the auth endpoint. There is no
// account system; a player is whoever holds the token for this ID.
type Player struct {
	ID          string    `json:"id" redis:"id"`
	DisplayName string    `json:"display_name,omitempty" redis:"display_name"`
	CreatedAt   time.Time `json:"created_at" redis:"created_at"`
}
