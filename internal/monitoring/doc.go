// Package monitoring provides Prometheus metrics for the profile engines.
//
// Metrics cover the serialized event queues, peer session lifecycle, browse
// cache traffic and the device-role report exchange. All helpers are safe for
// concurrent use; services treat a nil *Metrics as "metrics disabled".
package monitoring
