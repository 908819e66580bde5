// Package otel exports goDispatch metrics through the OpenTelemetry metric
// API as observable instruments backed by the core snapshot.
package otel
