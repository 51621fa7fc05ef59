package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/core"
)

// ChangeMessage announces that a write changed some collections of one owner.
// Receivers drop the matching cache slots.
type ChangeMessage struct {
	Op          string            `json:"op"`
	Collections []core.Collection `json:"collections"`
	Mode        core.Mode         `json:"mode"`
	OwnerID     string            `json:"owner_id"`
	Origin      string            `json:"origin"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewChangeMessage(op string, scope core.Scope, collections []core.Collection, origin string) *ChangeMessage {
	return &ChangeMessage{
		Op:          op,
		Collections: collections,
		Mode:        scope.Mode,
		OwnerID:     scope.Owner(),
		Origin:      origin,
		Timestamp:   time.Now(),
	}
}

// Scope returns the scope the change applies to.
func (m *ChangeMessage) Scope() core.Scope {
	if m.Mode == core.ModeCloud {
		return core.CloudScope(m.OwnerID)
	}
	return core.LocalScope()
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
