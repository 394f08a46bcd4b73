package synthledger

import "time"

// AnnualVolume is a coarse bucket for a company's expected yearly
// transaction count, used to scale master-data and document-flow
// volumes.
type AnnualVolume struct {
	Name   string // TenK, HundredK, OneM, TenM, HundredM, Custom
	Custom int
}

// Count returns the numeric transaction count implied by the bucket.
func (v AnnualVolume) Count() int {
	switch v.Name {
	case "TenK":
		return 10_000
	case "HundredK":
		return 100_000
	case "OneM":
		return 1_000_000
	case "TenM":
		return 10_000_000
	case "HundredM":
		return 100_000_000
	default:
		return v.Custom
	}
}

// CompanyConfig configures one legal entity in the run.
type CompanyConfig struct {
	Code                   string
	Name                   string
	Currency               Currency
	Country                Region
	FiscalYearVariant      string // default "K4"
	AnnualTransactionVolume AnnualVolume
	VolumeWeight           float64
	ParentCode             string
	OwnershipPercent        float64
}

// ChartComplexity controls how large a generated chart of accounts is.
type ChartComplexity string

const (
	ChartSmall  ChartComplexity = "SMALL"
	ChartMedium ChartComplexity = "MEDIUM"
	ChartLarge  ChartComplexity = "LARGE"
)

// ChartOfAccountsConfig configures master-data chart generation.
type ChartOfAccountsConfig struct {
	Complexity       ChartComplexity
	IndustrySpecific bool
	MinHierarchyDepth int
	MaxHierarchyDepth int
}

// TransactionSource is a document origination channel.
type TransactionSource string

const (
	SourceManual     TransactionSource = "MANUAL"
	SourceAutomated  TransactionSource = "AUTOMATED"
	SourceRecurring  TransactionSource = "RECURRING"
	SourceAdjustment TransactionSource = "ADJUSTMENT"
)

// TransactionConfig configures distributions governing generated
// documents: source mix, amount distribution, and seasonality.
type TransactionConfig struct {
	SourceDistribution map[TransactionSource]float64 // must sum to 1.0
	BenfordEnabled     bool
	AmountTolerance    float64
	SeasonalityEnabled bool
}

// PrivacyLevel selects the DP epsilon budget for fingerprint extraction.
type PrivacyLevel string

const (
	PrivacyMinimal  PrivacyLevel = "MINIMAL"
	PrivacyStandard PrivacyLevel = "STANDARD"
	PrivacyHigh     PrivacyLevel = "HIGH"
	PrivacyMaximum  PrivacyLevel = "MAXIMUM"
)

// Epsilon returns the total DP budget for the level.
func (p PrivacyLevel) Epsilon() float64 {
	switch p {
	case PrivacyMinimal:
		return 5.0
	case PrivacyStandard:
		return 1.0
	case PrivacyHigh:
		return 0.5
	case PrivacyMaximum:
		return 0.1
	default:
		return 1.0
	}
}

// FingerprintConfig configures the L9 extraction pipeline.
type FingerprintConfig struct {
	Level              PrivacyLevel
	EpsilonOverride    *float64
	KAnonymity         int
	MaxSampleSize      int
	MinRows            int
	StreamingBatchSize int
}

// Epsilon returns the effective epsilon budget, honoring an override.
func (f FingerprintConfig) Epsilon() float64 {
	if f.EpsilonOverride != nil {
		return *f.EpsilonOverride
	}
	return f.Level.Epsilon()
}

// GlobalConfig holds run-wide settings (spec §6).
type GlobalConfig struct {
	Seed            uint64
	HasSeed         bool
	IndustrySector  string
	StartDate       time.Time
	PeriodMonths    int
	GroupCurrency   Currency
	Parallel        bool
	WorkerThreads   int
	MemoryLimitMB   int
}

// DocumentFlowConfig configures P2P/O2C simulation rates (spec §4.3,
// §6 document_flows).
type DocumentFlowConfig struct {
	PartialDeliveryRate      float64
	MaxPriceVariancePercent  float64
	EarlyPaymentDiscountRate float64
	CreditCheckFailureRate   float64
}

// FraudTypeWeight assigns relative weight to one FraudType within
// FraudConfig.TypeDistribution.
type FraudTypeWeight struct {
	Type   FraudType
	Weight float64
}

// FraudConfig governs the fraud-injection/labeling pipeline (spec §6
// fraud): whether entries are labeled, what fraction are fraudulent,
// the mix of irregularity types, whether fraudulent entries cluster
// near period end, and the amount above which a fraudulent entry
// would normally have required a second approval it bypasses.
type FraudConfig struct {
	Enabled                 bool
	FraudRate               float64
	TypeDistribution        []FraudTypeWeight
	ClusterNearPeriodEnd    bool
	ApprovalBypassThreshold Money
}

// InternalControlsConfig governs segregation-of-duties realism (spec
// §6 internal_controls): the largest amount one approver may sign off
// alone before a second approval is modeled as required.
type InternalControlsConfig struct {
	SegregationOfDutiesEnabled bool
	MaxSingleApproverAmount    Money
}

// ApprovalThreshold names the minimum approver level required for
// documents at or above Amount.
type ApprovalThreshold struct {
	Amount Money
	Level  string // e.g. "MANAGER", "DIRECTOR", "CFO"
}

// ApprovalConfig configures the approval-chain thresholds applied to
// generated documents (spec §6 approval).
type ApprovalConfig struct {
	Enabled    bool
	Thresholds []ApprovalThreshold
}

// DepartmentConfig declares one cost-center/profit-center combination
// used to populate JournalLine.CostCenter/ProfitCenter (spec §6
// departments). Weight controls how often a document is attributed to
// this department relative to its siblings.
type DepartmentConfig struct {
	Code         string
	Name         string
	ProfitCenter string
	Weight       float64
}

// MasterDataConfig overrides the engine's default master-data sizing
// heuristics (spec §6 master_data); zero fields fall back to
// masterDataScale's volume-based defaults.
type MasterDataConfig struct {
	VendorCount     int
	CustomerCount   int
	MaterialCount   int
	FixedAssetCount int
}

// IntercompanyConfig governs intercompany transaction generation
// between parent and subsidiary companies and the elimination inputs
// it feeds into consolidation (spec §6 intercompany, spec §4.7).
type IntercompanyConfig struct {
	Enabled       bool
	TransferRate  float64 // probability a link trades intercompany in a given period
	MarkupPercent float64
}

// BalanceConfig governs balance-tracking and period-close accrual/tax
// behavior (spec §6 balance, spec §4.5/§4.6).
type BalanceConfig struct {
	RollforwardEnabled bool
	AccruedExpenseRate float64
	AccruedRevenueRate float64
	TaxRate            float64
}

// OutputMode selects how a generation run's artifacts are delivered.
type OutputMode string

const (
	OutputModeMemory OutputMode = "MEMORY"
	OutputModeFile   OutputMode = "FILE"
)

// OutputFormat selects the on-disk encoding for exported entities.
type OutputFormat string

const (
	FormatJSON    OutputFormat = "JSON"
	FormatCSV     OutputFormat = "CSV"
	FormatParquet OutputFormat = "PARQUET"
)

// CompressionKind selects output compression, if any.
type CompressionKind string

const (
	CompressionNone CompressionKind = "NONE"
	CompressionGzip CompressionKind = "GZIP"
	CompressionZstd CompressionKind = "ZSTD"
)

// OutputConfig governs how generated entities are written out (spec
// §6 output).
type OutputConfig struct {
	Mode               OutputMode
	Formats            []OutputFormat
	Compression        CompressionKind
	BatchSize          int
	PartitionByCompany bool
	PartitionByPeriod  bool
}

// GeneratorConfig is the full typed configuration the engine accepts;
// everything upstream of it (CLI/YAML parsing) is out of scope (spec §1).
type GeneratorConfig struct {
	Global          GlobalConfig
	Companies       []CompanyConfig
	ChartOfAccounts ChartOfAccountsConfig
	Transactions    TransactionConfig
	Fingerprint     FingerprintConfig
	DocumentFlows   DocumentFlowConfig
	Fraud           FraudConfig
	InternalControls InternalControlsConfig
	Approval        ApprovalConfig
	Departments     []DepartmentConfig
	MasterData      MasterDataConfig
	Intercompany    IntercompanyConfig
	Balance         BalanceConfig
	Output          OutputConfig
}

// Validate checks cross-field invariants the engine requires before a
// run starts, returning a ConfigError-kind GenError on the first
// violation found (spec §7).
func (c GeneratorConfig) Validate() error {
	if len(c.Companies) == 0 {
		return NewError(ErrConfig, "at least one company is required")
	}
	if c.Global.PeriodMonths <= 0 {
		return NewError(ErrConfig, "global.period_months must be positive")
	}
	var weight float64
	seen := map[string]bool{}
	for _, co := range c.Companies {
		if co.Code == "" {
			return NewError(ErrConfig, "company code must not be empty")
		}
		if seen[co.Code] {
			return NewError(ErrConfig, "duplicate company code %q", co.Code)
		}
		seen[co.Code] = true
		if co.VolumeWeight < 0 {
			return NewError(ErrConfig, "company %q: volume_weight must be non-negative", co.Code)
		}
		weight += co.VolumeWeight
	}
	if weight <= 0 {
		return NewError(ErrConfig, "sum of company volume weights must be positive")
	}
	if sum := sumOf(c.Transactions.SourceDistribution); len(c.Transactions.SourceDistribution) > 0 && !approxOne(sum) {
		return NewError(ErrConfig, "transactions.source_distribution must sum to 1.0, got %f", sum)
	}
	if c.Fingerprint.MinRows < 0 {
		return NewError(ErrConfig, "fingerprint.min_rows must be non-negative")
	}
	if c.DocumentFlows.PartialDeliveryRate < 0 || c.DocumentFlows.PartialDeliveryRate > 1 {
		return NewError(ErrConfig, "document_flows.partial_delivery_rate must be in [0,1]")
	}
	if c.DocumentFlows.CreditCheckFailureRate < 0 || c.DocumentFlows.CreditCheckFailureRate > 1 {
		return NewError(ErrConfig, "document_flows.credit_check_failure_rate must be in [0,1]")
	}
	if c.Fraud.Enabled && (c.Fraud.FraudRate < 0 || c.Fraud.FraudRate > 1) {
		return NewError(ErrConfig, "fraud.fraud_rate must be in [0,1]")
	}
	if c.Intercompany.Enabled && (c.Intercompany.TransferRate < 0 || c.Intercompany.TransferRate > 1) {
		return NewError(ErrConfig, "intercompany.transfer_rate must be in [0,1]")
	}
	if c.Balance.TaxRate < 0 || c.Balance.TaxRate > 1 {
		return NewError(ErrConfig, "balance.tax_rate must be in [0,1]")
	}
	return nil
}

func sumOf(m map[TransactionSource]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

func approxOne(f float64) bool {
	const tol = 1e-6
	return f > 1-tol && f < 1+tol
}

// DefaultMinRows is the fingerprint extractor's guard threshold
// (spec §4.9).
const DefaultMinRows = 10

// DefaultReservoirSize is the default bounded reservoir sample size for
// numeric accumulators.
const DefaultReservoirSize = 10_000

// DefaultTopK is the default bounded categorical top-K width.
const DefaultTopK = 1_000
