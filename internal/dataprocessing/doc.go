// Package dataprocessing reads wide-format indicator datasets and
// reshapes them into long format: one record per entity, indicator and
// year. It tolerates the messy encodings and NA conventions of published
// indicator files and optionally merges entity metadata by identifier.
package dataprocessing
