// Package prometheus renders goDispatch metrics in Prometheus text exposition
// format, without importing the Prometheus client library.
package prometheus
