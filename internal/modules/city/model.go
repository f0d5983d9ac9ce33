// README: City record used to price door-to-door interior deliveries.
package city

import (
	"errors"
	"strings"

	"freightdesk/internal/types"
)

var ErrNotFound = errors.New("city not found")

type City struct {
	ID         types.ID `json:"id"`
	Name       string   `json:"name"`
	State      string   `json:"state,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Address is the destination string handed to the routing API.
func (c *City) Address() string {
	if c.State == "" {
		return c.Name
	}
	return strings.TrimSpace(c.Name) + ", " + strings.TrimSpace(c.State)
}
