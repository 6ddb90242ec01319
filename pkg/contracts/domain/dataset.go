package domain

// WideTable is a parsed wide-format source dataset: one row per
// entity-indicator pair, one column per year. Header cells are
// whitespace-trimmed and every row is padded or truncated to the
// header width, so cell access by column index is always valid.
type WideTable struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column, or -1.
func (t *WideTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LongRecord is one (entity, indicator, year) observation in long format.
// IDs holds the values of the table's id columns in source order. Attrs
// holds merged metadata attribute values and is empty until a metadata
// merge runs. Missing is true when the source cell was an NA marker,
// empty, or failed numeric coercion; Value is undefined in that case.
type LongRecord struct {
	IDs     []string
	Year    int
	Value   float64
	Missing bool
	Attrs   []string
}

// IndicatorDetail is one unique (code, name) pair observed in the source,
// used for the indicator reference sheet.
type IndicatorDetail struct {
	Code string
	Name string
}

// LongTable is the full long-format dataset produced by one reshape pass.
// Records are ordered row-major over the source: for each wide row in
// input order, one record per year column in input order.
type LongTable struct {
	// IDColumns are the names of the non-year columns, source order.
	IDColumns []string
	// EntityIdx and IndicatorIdx index into IDColumns.
	EntityIdx    int
	IndicatorIdx int
	// IndicatorNameIdx is -1 when the source has no indicator name column.
	IndicatorNameIdx int
	// AttrColumns are merged metadata attribute names; empty before merge.
	AttrColumns []string
	Records     []LongRecord
	// Indicators holds unique (code, name) pairs in first-appearance order.
	Indicators []IndicatorDetail
	// NACells counts cells that matched an NA marker; MalformedCells counts
	// cells that failed numeric parsing. Both are represented as Missing
	// records, never dropped.
	NACells        int
	MalformedCells int
}

// Header returns the output column names: id columns, Year, Value, then
// any merged attribute columns.
func (t *LongTable) Header() []string {
	header := make([]string, 0, len(t.IDColumns)+2+len(t.AttrColumns))
	header = append(header, t.IDColumns...)
	header = append(header, "Year", "Value")
	header = append(header, t.AttrColumns...)
	return header
}

// EntityID returns the entity identifier of a record.
func (t *LongTable) EntityID(r LongRecord) string {
	return r.IDs[t.EntityIdx]
}

// IndicatorID returns the indicator code of a record.
func (t *LongTable) IndicatorID(r LongRecord) string {
	return r.IDs[t.IndicatorIdx]
}

// MetadataTable holds entity metadata keyed by entity identifier.
// AttrColumns is the ordered set of attribute names; ByEntity maps an
// entity id to its attribute values in the same order. Duplicate rows
// for one entity in the source overwrite earlier ones (last one wins).
type MetadataTable struct {
	KeyColumn   string
	AttrColumns []string
	ByEntity    map[string][]string
}
