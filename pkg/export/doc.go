// Package export writes search results: the canonical CSV match list and
// an optional SVG score-distribution report.
package export
