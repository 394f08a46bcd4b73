package synthledger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() GeneratorConfig {
	return GeneratorConfig{
		Global: GlobalConfig{
			Seed: 42, HasSeed: true,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodMonths: 3, GroupCurrency: "USD",
		},
		Companies: []CompanyConfig{
			{
				Code: "C1", Name: "Parent Co", Currency: "USD", Country: RegionUS,
				AnnualTransactionVolume: AnnualVolume{Name: "TenK"}, VolumeWeight: 1,
			},
			{
				Code: "C2", Name: "Sub Co", Currency: "USD", Country: RegionUS,
				AnnualTransactionVolume: AnnualVolume{Name: "TenK"}, VolumeWeight: 1,
				ParentCode: "C1", OwnershipPercent: 0.9,
			},
		},
		Fingerprint: FingerprintConfig{Level: PrivacyStandard, MinRows: 1},
	}
}

func TestEngineRunIsDeterministic(t *testing.T) {
	cfg := testConfig()

	e1, err := NewEngine(zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	r1, err := e1.Run(context.Background())
	require.NoError(t, err)

	e2, err := NewEngine(zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	r2, err := e2.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(r1.JournalEntries), len(r2.JournalEntries))
	require.NotEmpty(t, r1.JournalEntries)
	for i := range r1.JournalEntries {
		require.Equal(t, r1.JournalEntries[i].ID, r2.JournalEntries[i].ID)
		require.Equal(t, len(r1.JournalEntries[i].Lines), len(r2.JournalEntries[i].Lines))
		for j := range r1.JournalEntries[i].Lines {
			cmp, err := r1.JournalEntries[i].Lines[j].Amount.Cmp(r2.JournalEntries[i].Lines[j].Amount)
			require.NoError(t, err)
			require.Zero(t, cmp)
		}
	}
}

func TestEngineRunProducesBalancedTrialBalances(t *testing.T) {
	cfg := testConfig()
	e, err := NewEngine(zap.NewNop(), cfg, nil)
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.TrialBalances)
	for _, tb := range result.TrialBalances {
		require.True(t, tb.IsEquationValid, "trial balance for %s period %d not balanced", tb.CompanyCode, tb.FiscalPeriod)
	}
}

func TestEngineRunConsolidatesParentSubsidiary(t *testing.T) {
	cfg := testConfig()
	e, err := NewEngine(zap.NewNop(), cfg, nil)
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Consolidated)
	require.True(t, result.Consolidated.IsEquationValid)
}

func TestEngineRunWithStoragePersists(t *testing.T) {
	dbFile := "test_engine_run.db"
	os.Remove(dbFile)
	defer os.Remove(dbFile)

	storage, err := NewStorage(dbFile)
	require.NoError(t, err)

	cfg := testConfig()
	e, err := NewEngine(zap.NewNop(), cfg, storage)
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := NewStorage(dbFile)
	require.NoError(t, err)
	defer reopened.Close()

	companies, err := reopened.GetAllCompanies()
	require.NoError(t, err)
	require.Len(t, companies, len(cfg.Companies))

	for company := range result.Fingerprints {
		sealed, ok, err := reopened.GetFingerprint(company)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotEmpty(t, sealed)
		fp, err := OpenFingerprint(sealed, nil)
		require.NoError(t, err)
		require.Equal(t, company, fp.Manifest.SourceName)
	}
}

func TestNewEngineRequiresSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Global.HasSeed = false
	_, err := NewEngine(zap.NewNop(), cfg, nil)
	require.Error(t, err)
}
