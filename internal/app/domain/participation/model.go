package participation

import "time"

// Participation records points spent into a project. Records are immutable
// once created; there is no update or delete path.
type Participation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProjectID      string    `json:"projectId"`
	StarPointsUsed float64   `json:"starPointsUsed"`
	CreatedAt      time.Time `json:"createdAt"`
}
