package synthledger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbFile := "test_storage_" + t.Name() + ".db"
	os.Remove(dbFile)
	t.Cleanup(func() { os.Remove(dbFile) })

	s, err := NewStorage(dbFile)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorageCompanyRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	co := Company{Code: "C1", Name: "Acme", FunctionalCurrency: "USD", Region: RegionUS}
	require.NoError(t, s.SaveCompany(co))

	got, ok, err := s.GetCompany("C1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, co.Name, got.Name)

	_, ok, err = s.GetCompany("missing")
	require.NoError(t, err)
	require.False(t, ok)

	all, err := s.GetAllCompanies()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestStorageJournalEntriesByPeriod(t *testing.T) {
	s := openTestStorage(t)

	base := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		je := JournalEntry{
			ID: "JE-C1-00000" + string(rune('1'+i)), CompanyCode: "C1",
			PostingDate: base.AddDate(0, 0, i), FiscalYear: 2025, FiscalPeriod: 3,
			Lines: []JournalLine{
				{AccountCode: "100000", Type: Debit, Amount: MustParseMoney("100", "USD")},
				{AccountCode: "400000", Type: Credit, Amount: MustParseMoney("100", "USD")},
			},
		}
		require.NoError(t, s.SaveJournalEntry(je))
	}

	entries, err := s.GetJournalEntriesByCompanyAndPeriod("C1", 2025, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestStorageBalanceSnapshotRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	snap := BalanceSnapshot{CompanyCode: "C1", FiscalYear: 2025, FiscalPeriod: 3, TakenAt: time.Now()}
	require.NoError(t, s.SaveBalanceSnapshot(snap))

	got, ok, err := s.GetBalanceSnapshot("C1", 2025, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap.CompanyCode, got.CompanyCode)

	all, err := s.GetBalanceSnapshotsByCompany("C1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestStorageFingerprintRoundTripsRawBytes(t *testing.T) {
	s := openTestStorage(t)

	sealed := []byte{0x01, 0x02, 0x03, 0x04}
	require.NoError(t, s.SaveFingerprint("C1", sealed))

	got, ok, err := s.GetFingerprint("C1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sealed, got)
}
