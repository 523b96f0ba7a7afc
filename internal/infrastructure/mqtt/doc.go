// Package mqtt wraps paho.mqtt.golang for CrowdSense Core.
//
// The engine publishes a campus snapshot and per-zone snapshots each tick,
// flow sets, and alert events. Topic builders live in topics.go; the
// hierarchy is:
//
//	crowdsense/system/status           service online/offline (retained)
//	crowdsense/campus/snapshot         full campus snapshot (retained)
//	crowdsense/campus/flows            inter-zone flow set
//	crowdsense/zones/{id}/snapshot     per-zone snapshot (retained)
//	crowdsense/alerts/{id}             alert events (not retained)
//
// Connections auto-reconnect with backoff; subscriptions are restored
// after reconnect. A Last Will on the status topic lets consumers detect
// an unexpected disconnect.
package mqtt
