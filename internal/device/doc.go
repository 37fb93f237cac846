// Package device implements the device-role profile engine: a single
// registration slot for the host application, report exchange with one
// connected peer, and a liveness watch that tears the registration down
// when the registered client dies.
package device
