package synthledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculateMonthlyDepreciationStraightLine(t *testing.T) {
	asset := FixedAsset{
		AssetID: "FA-C1-000001", CompanyCode: "C1", Class: AssetMachineryEquipment,
		DepreciationMethod: DepStraightLine, UsefulLifeMonths: 84,
		AcquisitionDate: mustDate(2025, 1, 1), CapitalizedDate: mustDate(2025, 1, 1),
		AcquisitionCost: MustParseMoney("8400", "USD"), SalvageValue: Zero("USD"),
		AccumulatedDepreciation: Zero("USD"), Status: AssetActive,
	}

	monthly := CalculateMonthlyDepreciation(asset, mustDate(2025, 2, 1))
	require.Equal(t, "100", monthly.Amount.StringFixed(0))
}

func TestCalculateMonthlyDepreciationCapsAtSalvage(t *testing.T) {
	asset := FixedAsset{
		AssetID: "FA-C1-000002", CompanyCode: "C1", Class: AssetMachineryEquipment,
		DepreciationMethod: DepStraightLine, UsefulLifeMonths: 12,
		AcquisitionDate: mustDate(2025, 1, 1), CapitalizedDate: mustDate(2025, 1, 1),
		AcquisitionCost: MustParseMoney("1200", "USD"), SalvageValue: Zero("USD"),
		AccumulatedDepreciation: MustParseMoney("1190", "USD"), Status: AssetActive,
	}

	monthly := CalculateMonthlyDepreciation(asset, mustDate(2026, 1, 1))
	require.True(t, monthly.Amount.LessThanOrEqual(MustParseMoney("10", "USD").Amount))
}

func TestCalculateMonthlyDepreciationZeroForDisposed(t *testing.T) {
	asset := FixedAsset{
		AssetID: "FA-C1-000003", CompanyCode: "C1", Class: AssetMachineryEquipment,
		DepreciationMethod: DepStraightLine, UsefulLifeMonths: 60,
		AcquisitionDate: mustDate(2025, 1, 1), CapitalizedDate: mustDate(2025, 1, 1),
		AcquisitionCost: MustParseMoney("5000", "USD"), SalvageValue: Zero("USD"),
		Status: AssetDisposed,
	}

	monthly := CalculateMonthlyDepreciation(asset, mustDate(2025, 6, 1))
	require.True(t, monthly.IsZero())
}

func TestRunMonthlyCloseAppliesDepreciation(t *testing.T) {
	cal := DefaultFiscalCalendar()
	ids := NewIDAllocator()
	accounts := []Account{
		{ID: "C1-160000", CompanyCode: "C1", Code: "160000", Type: AccountAsset, Currency: "USD"},
		{ID: "C1-169000", CompanyCode: "C1", Code: "169000", Type: AccountAsset, Currency: "USD"},
		{ID: "C1-640000", CompanyCode: "C1", Code: "640000", Type: AccountExpense, Currency: "USD"},
	}
	tracker := NewBalanceTracker(accounts)
	orch := &CloseOrchestrator{IDs: ids, Cal: cal, Tracker: tracker, Issues: &IssueLog{}}

	asset := &FixedAsset{
		AssetID: "FA-C1-000001", CompanyCode: "C1", Class: AssetMachineryEquipment,
		DepreciationMethod: DepStraightLine, UsefulLifeMonths: 84,
		AcquisitionDate: mustDate(2025, 1, 1), CapitalizedDate: mustDate(2025, 1, 1),
		AcquisitionCost: MustParseMoney("8400", "USD"), SalvageValue: Zero("USD"),
		AccumulatedDepreciation: Zero("USD"), Status: AssetActive,
	}

	run := orch.RunMonthlyClose("C1", mustDate(2025, 1, 31), []*FixedAsset{asset}, false, "310000")
	require.Equal(t, CloseCompleted, run.Status)

	var depTask *CloseTaskResult
	for i := range run.Tasks {
		if run.Tasks[i].Name == string(TaskRunDepreciation) {
			depTask = &run.Tasks[i]
		}
	}
	require.NotNil(t, depTask)
	require.Len(t, depTask.EntriesCreated, 1)
	require.Equal(t, "100", depTask.TotalAmount.Amount.StringFixed(0))
}
