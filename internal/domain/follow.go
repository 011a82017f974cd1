package domain

import "time"

// FollowLink maps a follower to the trader they copy. At most one leader
// per follower; a new follow overwrites the previous one.
type FollowLink struct {
	FollowerID string
	Leader     string
	CreatedAt  time.Time
}

// TraderScore ranks a trader for copy-trading discovery. Reserved: scores
// are only written by an injected Ranker implementation, never by the core.
type TraderScore struct {
	UserID string
	Score  float64
}
