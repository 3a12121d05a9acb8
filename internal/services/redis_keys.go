package services

// Redis key formats. Player keys are scoped by player ID, game keys by
// game ID.
const (
	KeyPlayer        = "player:%s"
	KeyGameSession   = "game:%s"
	KeyPlayerActive  = "player:%s:active"  // set of game IDs
	KeyPlayerHistory = "player:%s:history" // list of session JSON, newest first
)
