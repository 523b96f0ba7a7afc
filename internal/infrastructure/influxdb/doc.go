// Package influxdb writes CrowdSense time-series telemetry.
//
// The engine writes one zone_metrics point per zone per tick (occupancy,
// prediction, risk index, growth rate, surge flag), zone_flows points for
// each flow edge, and alerts points when the automation engine fires.
//
// Writes are non-blocking: points are batched by the client and flushed
// on an interval, so a slow or unreachable InfluxDB never stalls the
// tick loop. Async write errors surface through SetOnError.
package influxdb
