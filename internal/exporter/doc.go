// Package exporter paginates the long-format dataset into spreadsheet
// sheets and writes the output workbook, an optional CSV sidecar and the
// console preview. Output files are written to a temporary sibling and
// moved over the target on success, so a failed export never leaves a
// partial file behind.
package exporter
