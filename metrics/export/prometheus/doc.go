// Package prometheus exposes goSession engine metrics as a
// client_golang Collector.
package prometheus
