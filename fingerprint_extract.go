package synthledger

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// reservoirSize bounds the retained sample used for percentile
// estimation on a numeric column (spec §4.9, default 10 000).
const reservoirSize = 10000

// topKSize bounds the number of distinct values tracked per
// categorical column before the long tail is merged into
// "suppressed" (spec §4.9, default 1 000).
const topKSize = 1000

// numericAccumulator is an online (single-pass) accumulator for one
// numeric column, grounded on the original's StreamingNumericStats:
// count/min/max/mean/variance via Welford's algorithm, a bounded
// reservoir sample for percentiles, and a first-digit histogram for
// Benford analysis.
type numericAccumulator struct {
	count         int64
	nullCount     int64
	zeroCount     int64
	negativeCount int64
	min, max      float64
	mean, m2      float64 // Welford state
	benford       [9]float64
	reservoir     []float64
	seen          int64
	rng           *Stream
}

func newNumericAccumulator(rng *Stream) *numericAccumulator {
	return &numericAccumulator{min: math.Inf(1), max: math.Inf(-1), rng: rng}
}

func (a *numericAccumulator) Add(v float64) {
	a.count++
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
	if v == 0 {
		a.zeroCount++
	}
	if v < 0 {
		a.negativeCount++
	}

	delta := v - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (v - a.mean)

	if d := firstSignificantDigit(v); d > 0 {
		a.benford[d-1]++
	}

	a.seen++
	switch {
	case int64(len(a.reservoir)) < reservoirSize:
		a.reservoir = append(a.reservoir, v)
	case a.rng != nil:
		j := a.rng.IntN(int(a.seen))
		if j < reservoirSize {
			a.reservoir[j] = v
		}
	}
}

func firstSignificantDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	for v < 1 {
		v *= 10
	}
	for v >= 10 {
		v /= 10
	}
	return int(v)
}

func (a *numericAccumulator) Variance() float64 {
	if a.count < 2 {
		return 0
	}
	return a.m2 / float64(a.count-1)
}

func (a *numericAccumulator) Percentile(p int) float64 {
	if len(a.reservoir) == 0 {
		return 0
	}
	sorted := append([]float64(nil), a.reservoir...)
	sort.Float64s(sorted)
	return stat.Quantile(float64(p)/100, stat.Empirical, sorted, nil)
}

func (a *numericAccumulator) Finalize() NumericStatistics {
	var benfordTotal float64
	for _, v := range a.benford {
		benfordTotal += v
	}
	hist := a.benford
	if benfordTotal > 0 {
		for i := range hist {
			hist[i] /= benfordTotal
		}
	}
	stats := NumericStatistics{
		Count: a.count, NullCount: a.nullCount, ZeroCount: a.zeroCount, NegativeCount: a.negativeCount,
		Mean: a.mean, Variance: a.Variance(), StdDev: math.Sqrt(a.Variance()),
		Percentiles:      map[int]float64{50: a.Percentile(50), 90: a.Percentile(90), 99: a.Percentile(99)},
		BenfordHistogram: hist,
	}
	if a.count > 0 {
		stats.Min, stats.Max = a.min, a.max
	}
	return stats
}

// categoricalAccumulator is an online bounded counter for one
// categorical column, grounded on the original's
// StreamingCategoricalStats: exact counts for the first topKSize
// distinct values seen. A value first seen after the table is full is
// counted only in the suppressed tail, however often it occurs.
type categoricalAccumulator struct {
	count     int64
	nullCount int64
	counts    map[string]int64
	suppressed int64
}

func newCategoricalAccumulator() *categoricalAccumulator {
	return &categoricalAccumulator{counts: make(map[string]int64)}
}

func (a *categoricalAccumulator) Add(v string) {
	a.count++
	if _, ok := a.counts[v]; ok || len(a.counts) < topKSize {
		a.counts[v]++
		return
	}
	a.suppressed++
}

func (a *categoricalAccumulator) Entropy() float64 {
	if a.count == 0 {
		return 0
	}
	var h float64
	for _, c := range a.counts {
		p := float64(c) / float64(a.count)
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Finalize applies k-anonymity suppression (values occurring fewer
// than k times are dropped from the top-K and folded into the
// suppressed count) before emitting the final statistics.
func (a *categoricalAccumulator) Finalize(k int) CategoricalStatistics {
	type kv struct {
		v string
		c int64
	}
	entries := make([]kv, 0, len(a.counts))
	for v, c := range a.counts {
		entries = append(entries, kv{v, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].c != entries[j].c {
			return entries[i].c > entries[j].c
		}
		return entries[i].v < entries[j].v
	})

	suppressed := a.suppressed
	var topK []CategoryCount
	for _, e := range entries {
		if int64(e.c) < int64(k) {
			suppressed += e.c
			continue
		}
		topK = append(topK, CategoryCount{Value: e.v, Count: e.c})
	}

	return CategoricalStatistics{
		Count: a.count, NullCount: a.nullCount, TopK: topK,
		CardinalityEstimate: int64(len(a.counts)),
		Entropy:             a.Entropy(),
		SuppressedCount:     suppressed,
	}
}

// ExtractionConfig parameterizes FingerprintExtractor, grounded on
// the original's ExtractionConfig.
type ExtractionConfig struct {
	Fingerprint     FingerprintConfig
	ExtractCorrelations bool
	Rng             *Stream
}

// FingerprintExtractor coordinates ingest, streaming statistics
// accumulation, privacy-mechanism application, and manifest assembly
// (spec §4.9's pipeline).
type FingerprintExtractor struct {
	Config ExtractionConfig
}

// extractColumns runs the streaming accumulator pass over a set of
// string-typed rows (every ingest source converges to this shape
// before statistics are computed), returning the per-column raw
// accumulators plus detected schema.
func (e *FingerprintExtractor) extractColumns(headers []string, rows func(yield func([]string) bool)) ([]ColumnSchema, map[int]*numericAccumulator, map[int]*categoricalAccumulator, int64, error) {
	numericAccs := make(map[int]*numericAccumulator)
	categoricalAccs := make(map[int]*categoricalAccumulator)
	isNumeric := make(map[int]bool)
	determined := make(map[int]bool)
	var rowCount int64

	var loopErr error
	rows(func(fields []string) bool {
		rowCount++
		for i, field := range fields {
			if i >= len(headers) {
				continue
			}
			if !determined[i] {
				_, err := strconv.ParseFloat(field, 64)
				isNumeric[i] = err == nil || field == ""
				determined[i] = true
			}
			if field == "" {
				continue
			}
			if isNumeric[i] {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					continue
				}
				acc, ok := numericAccs[i]
				if !ok {
					acc = newNumericAccumulator(e.Config.Rng)
					numericAccs[i] = acc
				}
				acc.Add(v)
			} else {
				acc, ok := categoricalAccs[i]
				if !ok {
					acc = newCategoricalAccumulator()
					categoricalAccs[i] = acc
				}
				acc.Add(field)
			}
		}
		if max := e.Config.Fingerprint.MaxSampleSize; max > 0 && rowCount >= int64(max) {
			return false
		}
		return true
	})

	schema := make([]ColumnSchema, len(headers))
	for i, h := range headers {
		typ := ColumnCategorical
		if isNumeric[i] {
			typ = ColumnNumeric
		}
		schema[i] = ColumnSchema{Name: h, Type: typ}
	}
	return schema, numericAccs, categoricalAccs, rowCount, loopErr
}

// buildFingerprint assembles a Fingerprint from accumulated column
// statistics, running the configured privacy mechanisms over each
// release (spec §4.9's "privacy mechanisms" step) and recording an
// audit entry per invocation.
func (e *FingerprintExtractor) buildFingerprint(sourceName string, headers []string, schema []ColumnSchema, numericAccs map[int]*numericAccumulator, categoricalAccs map[int]*categoricalAccumulator, rowCount int64, epsilonBudget float64) (Fingerprint, error) {
	if rowCount < int64(minRowsOrDefault(e.Config.Fingerprint.MinRows)) {
		return Fingerprint{}, NewError(ErrInsufficientData, "need at least %d rows, got %d", minRowsOrDefault(e.Config.Fingerprint.MinRows), rowCount)
	}

	budget := NewPrivacyBudget(epsilonBudget)
	var stats []ColumnStatistics
	k := e.Config.Fingerprint.KAnonymity
	if k <= 0 {
		k = 1
	}

	for i, h := range headers {
		if acc, ok := numericAccs[i]; ok {
			ns := acc.Finalize()
			noisyMean, spent, err := budget.ReleaseLaplace("mean", h, ns.Mean, 1.0)
			if err == nil {
				ns.Mean = noisyMean
			}
			_ = spent
			stats = append(stats, ColumnStatistics{ColumnName: h, Numeric: &ns})
		} else if acc, ok := categoricalAccs[i]; ok {
			cs := acc.Finalize(k)
			stats = append(stats, ColumnStatistics{ColumnName: h, Categorical: &cs})
		}
	}

	var correlations *CorrelationMatrix
	if e.Config.ExtractCorrelations {
		correlations = computeCorrelations(headers, numericAccs)
	}

	fp := Fingerprint{
		Manifest: FingerprintManifest{
			RowCount: rowCount, ColumnCount: len(headers), SourceName: sourceName,
			PrivacyLevel: e.Config.Fingerprint.Level, EpsilonBudget: epsilonBudget, EpsilonSpent: budget.Spent(),
		},
		Schema:       schema,
		Statistics:   stats,
		Correlations: correlations,
		PrivacyAudit: budget.Audit(),
	}
	return fp, nil
}

func minRowsOrDefault(n int) int {
	if n <= 0 {
		return 10
	}
	return n
}

// computeCorrelations derives a Pearson correlation matrix across
// numeric columns from their reservoir samples (an approximation
// consistent with the rest of the pipeline's bounded-memory design).
func computeCorrelations(headers []string, accs map[int]*numericAccumulator) *CorrelationMatrix {
	var indices []int
	for i := range accs {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	if len(indices) < 2 {
		return nil
	}

	names := make([]string, len(indices))
	for j, i := range indices {
		names[j] = headers[i]
	}

	values := make([][]float64, len(indices))
	for j := range values {
		values[j] = make([]float64, len(indices))
	}
	for j1, i1 := range indices {
		for j2, i2 := range indices {
			if j2 < j1 {
				values[j1][j2] = values[j2][j1]
				continue
			}
			values[j1][j2] = pearsonCorrelation(accs[i1].reservoir, accs[i2].reservoir)
		}
	}
	return &CorrelationMatrix{Columns: names, Values: values}
}

// pearsonCorrelation delegates to gonum/stat over the shared prefix of
// both reservoirs; pairs with fewer than two overlapping samples or a
// zero-variance side report no correlation rather than NaN.
func pearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0
	}
	corr := stat.Correlation(a[:n], b[:n], nil)
	if math.IsNaN(corr) {
		return 0
	}
	return corr
}

// ExtractFromMemory fingerprints an in-memory table (spec §4.9's
// MemoryDataSource).
func (e *FingerprintExtractor) ExtractFromMemory(sourceName string, headers []string, rows [][]string) (Fingerprint, error) {
	schema, numericAccs, categoricalAccs, rowCount, err := e.extractColumns(headers, func(yield func([]string) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	})
	if err != nil {
		return Fingerprint{}, err
	}
	return e.buildFingerprint(sourceName, headers, schema, numericAccs, categoricalAccs, rowCount, e.Config.Fingerprint.Epsilon())
}

// ExtractFromCSV fingerprints a CSV file in a single streaming pass,
// grounded on the original's extract_streaming_csv.
func (e *FingerprintExtractor) ExtractFromCSV(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	headers, err := r.Read()
	if err != nil {
		return Fingerprint{}, err
	}

	var readErr error
	schema, numericAccs, categoricalAccs, rowCount, err := e.extractColumns(headers, func(yield func([]string) bool) {
		for {
			record, rerr := r.Read()
			if rerr == io.EOF {
				return
			}
			if rerr != nil {
				readErr = rerr
				return
			}
			if !yield(record) {
				return
			}
		}
	})
	if err != nil {
		return Fingerprint{}, err
	}
	if readErr != nil {
		return Fingerprint{}, readErr
	}
	return e.buildFingerprint(filepath.Base(path), headers, schema, numericAccs, categoricalAccs, rowCount, e.Config.Fingerprint.Epsilon())
}

// ExtractFromJSONLines fingerprints a newline-delimited JSON file
// whose objects share a flat string-keyed schema.
func (e *FingerprintExtractor) ExtractFromJSONLines(path string, headers []string, decodeLine func(line string) ([]string, error)) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	var decodeErr error
	scanner := bufio.NewScanner(f)
	schema, numericAccs, categoricalAccs, rowCount, err := e.extractColumns(headers, func(yield func([]string) bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			fields, derr := decodeLine(line)
			if derr != nil {
				decodeErr = derr
				return
			}
			if !yield(fields) {
				return
			}
		}
	})
	if err != nil {
		return Fingerprint{}, err
	}
	if decodeErr != nil {
		return Fingerprint{}, decodeErr
	}
	return e.buildFingerprint(filepath.Base(path), headers, schema, numericAccs, categoricalAccs, rowCount, e.Config.Fingerprint.Epsilon())
}

// ExtractFromDirectory fingerprints every matching file in a
// directory and merges the per-file results into one fingerprint,
// splitting the ε budget evenly across files — matching the
// original's extract_from_directory_impl (spec.md §9's size-weighted
// alternative is left unresolved by design; see DESIGN.md).
func (e *FingerprintExtractor) ExtractFromDirectory(dir string, extensions []string) (Fingerprint, error) {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Fingerprint{}, err
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(ent.Name())), ".")
		if len(allowed) == 0 || allowed[ext] {
			files = append(files, filepath.Join(dir, ent.Name()))
		}
	}
	if len(files) == 0 {
		return Fingerprint{}, NewError(ErrInsufficientData, "directory %s contains no matching files", dir)
	}

	perFileEpsilon := e.Config.Fingerprint.Epsilon() / float64(len(files))
	var merged Fingerprint
	var totalRows int64
	for i, path := range files {
		sub := *e
		sub.Config.Fingerprint.EpsilonOverride = &perFileEpsilon
		fp, err := sub.ExtractFromCSV(path)
		if err != nil {
			return Fingerprint{}, WrapError(ErrInsufficientData, err, "extracting %s", path)
		}
		if i == 0 {
			merged = fp
		} else {
			merged.Schema = append(merged.Schema, fp.Schema...)
			merged.Statistics = append(merged.Statistics, fp.Statistics...)
			merged.PrivacyAudit = append(merged.PrivacyAudit, fp.PrivacyAudit...)
			merged.Manifest.EpsilonSpent += fp.Manifest.EpsilonSpent
		}
		totalRows += fp.Manifest.RowCount
	}
	merged.Manifest.SourceName = dir
	merged.Manifest.RowCount = totalRows
	merged.Manifest.ColumnCount = len(merged.Schema)
	merged.Manifest.EpsilonBudget = e.Config.Fingerprint.Epsilon()
	return merged, nil
}
