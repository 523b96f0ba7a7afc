package engine

import (
	"encoding/json"
	"fmt"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/mqtt"
)

// capacityCommand is the payload accepted on a zone's capacity command
// topic.
type capacityCommand struct {
	Capacity int `json:"capacity"`
}

// HandleCapacityCommand applies a capacity change received over the
// broker. The topic carries the zone, the payload the new capacity:
//
//	crowdsense/zones/canteen/capacity/set  {"capacity": 150}
//
// It satisfies mqtt.MessageHandler; returned errors are logged by the
// client wrapper.
func (e *Engine) HandleCapacityCommand(topic string, payload []byte) error {
	zoneID, ok := mqtt.ZoneFromCapacityCommand(topic)
	if !ok {
		return fmt.Errorf("unexpected capacity command topic %q", topic)
	}

	var cmd capacityCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decoding capacity command for %s: %w", zoneID, err)
	}

	zs, err := e.UpdateCapacity(zoneID, cmd.Capacity)
	if err != nil {
		return fmt.Errorf("applying capacity command for %s: %w", zoneID, err)
	}

	e.logger.Info("capacity command applied",
		"zone", zoneID,
		"capacity", cmd.Capacity,
		"cri", zs.CRI,
	)
	return nil
}
