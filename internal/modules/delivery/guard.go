// README: Duplicate minute number detection per client.
package delivery

import (
	"context"
	"strings"

	"freightdesk/internal/types"
)

type MinuteIndex interface {
	ExistsMinute(ctx context.Context, minute string, clientID, excludeID types.ID) (bool, error)
}

// ContainsMinute reports whether any record other than excludeID carries the minute
// number for the client. Blank minute numbers never clash. It never mutates records.
func ContainsMinute(records []Record, minute string, clientID, excludeID types.ID) bool {
	minute = strings.TrimSpace(minute)
	if minute == "" || clientID.Empty() {
		return false
	}
	for i := range records {
		r := &records[i]
		if !excludeID.Empty() && r.ID == excludeID {
			continue
		}
		if r.ClientID == clientID && strings.TrimSpace(r.MinuteNumber) == minute {
			return true
		}
	}
	return false
}

type Guard struct {
	index MinuteIndex
}

func NewGuard(index MinuteIndex) *Guard {
	return &Guard{index: index}
}

// Exists is the persisted counterpart of ContainsMinute.
func (g *Guard) Exists(ctx context.Context, minute string, clientID, excludeID types.ID) (bool, error) {
	minute = strings.TrimSpace(minute)
	if minute == "" || clientID.Empty() {
		return false, nil
	}
	return g.index.ExistsMinute(ctx, minute, clientID, excludeID)
}
