// Package internaldefs holds the shared metric name/help definitions consumed
// by the Prometheus and OTel exporters. It exists so both exporters render an
// identical metric surface from one table.
package internaldefs
