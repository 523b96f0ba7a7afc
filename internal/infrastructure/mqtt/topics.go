package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the CrowdSense MQTT hierarchy.
//
// Scheme: crowdsense/{category}/{zone_or_scope}
const (
	// TopicPrefix is the base for all CrowdSense topics.
	TopicPrefix = "crowdsense"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "crowdsense/system"
)

// Topics provides builders for CrowdSense MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.ZoneSnapshot("canteen")
//	// Returns: "crowdsense/zones/canteen/snapshot"
type Topics struct{}

// SystemStatus returns the topic for service online/offline status.
// Retained so new subscribers see the last known state.
//
// Example: crowdsense/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ZoneSnapshot returns the topic for per-zone tick snapshots.
//
// Example: crowdsense/zones/canteen/snapshot
func (Topics) ZoneSnapshot(zoneID string) string {
	return fmt.Sprintf("%s/zones/%s/snapshot", TopicPrefix, zoneID)
}

// CampusSnapshot returns the topic for the full campus snapshot
// published each tick.
//
// Example: crowdsense/campus/snapshot
func (Topics) CampusSnapshot() string {
	return TopicPrefix + "/campus/snapshot"
}

// Alert returns the topic for alert events in a zone.
//
// Example: crowdsense/alerts/canteen
func (Topics) Alert(zoneID string) string {
	return fmt.Sprintf("%s/alerts/%s", TopicPrefix, zoneID)
}

// Flows returns the topic for the inter-zone flow set published each tick.
//
// Example: crowdsense/campus/flows
func (Topics) Flows() string {
	return TopicPrefix + "/campus/flows"
}

// CapacityCommand returns the command topic for setting a zone's capacity.
//
// Example: crowdsense/zones/canteen/capacity/set
func (Topics) CapacityCommand(zoneID string) string {
	return fmt.Sprintf("%s/zones/%s/capacity/set", TopicPrefix, zoneID)
}

// CapacityCommandFilter returns the subscription filter matching every
// zone's capacity command topic.
func (Topics) CapacityCommandFilter() string {
	return TopicPrefix + "/zones/+/capacity/set"
}

// ZoneFromCapacityCommand extracts the zone ID from a capacity command
// topic. ok is false when the topic has a different shape.
func ZoneFromCapacityCommand(topic string) (zoneID string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 ||
		parts[0] != TopicPrefix || parts[1] != "zones" ||
		parts[3] != "capacity" || parts[4] != "set" ||
		parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
