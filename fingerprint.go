package synthledger

import "time"

// ColumnType classifies a column for statistics-collection purposes.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "NUMERIC"
	ColumnCategorical ColumnType = "CATEGORICAL"
	ColumnDatetime    ColumnType = "DATETIME"
	ColumnBoolean     ColumnType = "BOOLEAN"
)

// ColumnSchema describes one discovered column (spec §4.9 "schema"
// section).
type ColumnSchema struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Nullable bool       `json:"nullable"`
}

// NumericStatistics is the per-column numeric accumulator output,
// grounded on the original's StreamingNumericStats.
type NumericStatistics struct {
	Count           int64      `json:"count"`
	NullCount       int64      `json:"null_count"`
	ZeroCount       int64      `json:"zero_count"`
	NegativeCount   int64      `json:"negative_count"`
	Min             float64    `json:"min"`
	Max             float64    `json:"max"`
	Mean            float64    `json:"mean"`
	Variance        float64    `json:"variance"`
	StdDev          float64    `json:"std_dev"`
	Percentiles     map[int]float64 `json:"percentiles"` // e.g. 50, 90, 99
	// BenfordHistogram[d] is the observed frequency of leading digit
	// d+1 (1-9) across all non-zero sampled values.
	BenfordHistogram [9]float64 `json:"benford_histogram"`
}

// CategoryCount is one entry of a categorical column's top-K table.
type CategoryCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// CategoricalStatistics is the per-column categorical accumulator
// output, grounded on the original's StreamingCategoricalStats.
type CategoricalStatistics struct {
	Count               int64           `json:"count"`
	NullCount           int64           `json:"null_count"`
	TopK                []CategoryCount `json:"top_k"`
	CardinalityEstimate int64           `json:"cardinality_estimate"`
	Entropy             float64         `json:"entropy"`
	SuppressedCount     int64           `json:"suppressed_count"`
}

// ColumnStatistics holds whichever statistic kind applies to a column;
// exactly one of Numeric/Categorical is populated per column's type.
type ColumnStatistics struct {
	ColumnName  string                 `json:"column_name"`
	Numeric     *NumericStatistics     `json:"numeric,omitempty"`
	Categorical *CategoricalStatistics `json:"categorical,omitempty"`
}

// PrivacyAuditEntry records one differential-privacy mechanism
// invocation (spec §4.9: "every mechanism invocation appends an entry
// to the privacy audit").
type PrivacyAuditEntry struct {
	Mechanism string    `json:"mechanism"`
	Column    string    `json:"column"`
	EpsilonSpent float64 `json:"epsilon_spent"`
	Timestamp time.Time `json:"timestamp"`
}

// FingerprintManifest is the top-level identifying metadata for a
// fingerprint artifact.
type FingerprintManifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	RowCount    int64     `json:"row_count"`
	ColumnCount int       `json:"column_count"`
	SourceName  string    `json:"source_name"`
	PrivacyLevel PrivacyLevel `json:"privacy_level"`
	EpsilonBudget float64 `json:"epsilon_budget"`
	EpsilonSpent  float64 `json:"epsilon_spent"`
}

// CorrelationMatrix is an optional section holding pairwise Pearson
// correlations between numeric columns.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // Values[i][j] = corr(Columns[i], Columns[j])
}

// Fingerprint is the fully assembled in-memory representation of a
// dataset fingerprint: manifest + schema + per-column statistics +
// optional correlations + privacy audit trail. This is what gets
// sealed into the binary container (fingerprint_io.go).
type Fingerprint struct {
	Manifest     FingerprintManifest  `json:"manifest"`
	Schema       []ColumnSchema       `json:"schema"`
	Statistics   []ColumnStatistics   `json:"statistics"`
	Correlations *CorrelationMatrix   `json:"correlations,omitempty"`
	PrivacyAudit []PrivacyAuditEntry  `json:"privacy_audit"`
}

// StatisticsFor returns the statistics entry for columnName, if present.
func (f Fingerprint) StatisticsFor(columnName string) (ColumnStatistics, bool) {
	for _, s := range f.Statistics {
		if s.ColumnName == columnName {
			return s, true
		}
	}
	return ColumnStatistics{}, false
}
