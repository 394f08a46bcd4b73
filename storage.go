package synthledger

// Storage persists generated entities to a bbolt-backed key-value
// file. Every value is JSON-encoded rather than protobuf-encoded:
// there is no generated wire schema for this domain, and the rest of
// the codebase (fingerprint sealing, config, issue logs) already
// treats JSON as its interchange format, so the storage layer follows
// suit rather than introducing a second serialization scheme.

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// Storage buckets, one per persisted entity kind.
var (
	BucketCompanies     = []byte("companies")
	BucketAccounts      = []byte("accounts")
	BucketVendors       = []byte("vendors")
	BucketCustomers     = []byte("customers")
	BucketMaterials     = []byte("materials")
	BucketFixedAssets   = []byte("fixed_assets")
	BucketDocuments     = []byte("documents")
	BucketJournalEntries = []byte("journal_entries")
	BucketBalanceSnapshots = []byte("balance_snapshots")
	BucketEliminationEntries = []byte("elimination_entries")
	BucketFingerprints  = []byte("fingerprints")
	BucketIssues        = []byte("issues")
)

var allBuckets = [][]byte{
	BucketCompanies, BucketAccounts, BucketVendors, BucketCustomers,
	BucketMaterials, BucketFixedAssets, BucketDocuments,
	BucketJournalEntries, BucketBalanceSnapshots, BucketEliminationEntries,
	BucketFingerprints, BucketIssues,
}

// Storage provides persistent storage for one generation run's output.
type Storage struct {
	db *bbolt.DB
}

// NewStorage opens (creating if needed) a bbolt database at dbPath and
// ensures every bucket exists.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initBuckets(); err != nil {
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return s, nil
}

// Close closes the underlying database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

func putJSON(tx *bbolt.Tx, bucket []byte, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", bucket, key, err)
	}
	return tx.Bucket(bucket).Put([]byte(key), data)
}

func getJSON(tx *bbolt.Tx, bucket []byte, key string, v any) (bool, error) {
	data := tx.Bucket(bucket).Get([]byte(key))
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func eachJSON[T any](tx *bbolt.Tx, bucket []byte, fn func(key string, v T) error) error {
	c := tx.Bucket(bucket).Cursor()
	for k, data := c.First(); k != nil; k, data = c.Next() {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("unmarshal %s/%s: %w", bucket, k, err)
		}
		if err := fn(string(k), v); err != nil {
			return err
		}
	}
	return nil
}

// SaveCompany persists a company keyed by its code.
func (s *Storage) SaveCompany(c Company) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketCompanies, c.Code, c) })
}

// GetCompany retrieves a company by code.
func (s *Storage) GetCompany(code string) (Company, bool, error) {
	var c Company
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, BucketCompanies, code, &c)
		return err
	})
	return c, found, err
}

// GetAllCompanies returns every persisted company.
func (s *Storage) GetAllCompanies() ([]Company, error) {
	var out []Company
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketCompanies, func(_ string, c Company) error {
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

// SaveAccount persists an account keyed by its id.
func (s *Storage) SaveAccount(a Account) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketAccounts, a.ID, a) })
}

// GetAllAccounts returns every persisted account.
func (s *Storage) GetAllAccounts() ([]Account, error) {
	var out []Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketAccounts, func(_ string, a Account) error {
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

// SaveVendor persists a vendor keyed by its id.
func (s *Storage) SaveVendor(v Vendor) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketVendors, v.ID, v) })
}

// GetAllVendors returns every persisted vendor.
func (s *Storage) GetAllVendors() ([]Vendor, error) {
	var out []Vendor
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketVendors, func(_ string, v Vendor) error {
			out = append(out, v)
			return nil
		})
	})
	return out, err
}

// SaveCustomer persists a customer keyed by its id.
func (s *Storage) SaveCustomer(c Customer) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketCustomers, c.ID, c) })
}

// GetAllCustomers returns every persisted customer.
func (s *Storage) GetAllCustomers() ([]Customer, error) {
	var out []Customer
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketCustomers, func(_ string, c Customer) error {
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

// SaveMaterial persists a material keyed by its id.
func (s *Storage) SaveMaterial(m Material) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketMaterials, m.ID, m) })
}

// GetAllMaterials returns every persisted material.
func (s *Storage) GetAllMaterials() ([]Material, error) {
	var out []Material
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketMaterials, func(_ string, m Material) error {
			out = append(out, m)
			return nil
		})
	})
	return out, err
}

// SaveFixedAsset persists a fixed asset keyed by its asset id.
func (s *Storage) SaveFixedAsset(a FixedAsset) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketFixedAssets, a.AssetID, a) })
}

// GetAllFixedAssets returns every persisted fixed asset.
func (s *Storage) GetAllFixedAssets() ([]FixedAsset, error) {
	var out []FixedAsset
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketFixedAssets, func(_ string, a FixedAsset) error {
			out = append(out, a)
			return nil
		})
	})
	return out, err
}

// SaveDocument persists a document keyed by its id.
func (s *Storage) SaveDocument(d Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketDocuments, d.ID, d) })
}

// GetDocument retrieves a document by id.
func (s *Storage) GetDocument(id string) (Document, bool, error) {
	var d Document
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, BucketDocuments, id, &d)
		return err
	})
	return d, found, err
}

// GetDocumentsByCompany returns every document belonging to companyCode.
func (s *Storage) GetDocumentsByCompany(companyCode string) ([]Document, error) {
	var out []Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketDocuments, func(_ string, d Document) error {
			if d.CompanyCode == companyCode {
				out = append(out, d)
			}
			return nil
		})
	})
	return out, err
}

// SaveJournalEntry persists a journal entry, keyed so entries sort by
// posting time within a bucket scan (mirrors the append-only event
// ordering the teacher's event store relied on).
func (s *Storage) SaveJournalEntry(je JournalEntry) error {
	key := fmt.Sprintf("%d_%s", je.PostingDate.UnixNano(), je.ID)
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketJournalEntries, key, je) })
}

// GetJournalEntriesByCompanyAndPeriod returns every journal entry for
// a company within a fiscal year/period.
func (s *Storage) GetJournalEntriesByCompanyAndPeriod(companyCode string, fiscalYear, fiscalPeriod int) ([]JournalEntry, error) {
	var out []JournalEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return eachJSON(tx, BucketJournalEntries, func(_ string, je JournalEntry) error {
			if je.CompanyCode == companyCode && je.FiscalYear == fiscalYear && je.FiscalPeriod == fiscalPeriod {
				out = append(out, je)
			}
			return nil
		})
	})
	return out, err
}

// GetJournalEntriesByDateRange returns every journal entry posted in
// [from, to] across all companies, in ascending posting-time order
// (guaranteed by the bucket's lexicographic key ordering).
func (s *Storage) GetJournalEntriesByDateRange(from, to time.Time) ([]JournalEntry, error) {
	var out []JournalEntry
	fromKey := fmt.Sprintf("%d", from.UnixNano())
	toKey := fmt.Sprintf("%d", to.UnixNano())
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(BucketJournalEntries).Cursor()
		for k, data := c.Seek([]byte(fromKey)); k != nil && string(k) <= toKey+"\xff"; k, data = c.Next() {
			if string(k) > toKey+"\xff" {
				break
			}
			var je JournalEntry
			if err := json.Unmarshal(data, &je); err != nil {
				return fmt.Errorf("unmarshal journal entry %s: %w", k, err)
			}
			if je.PostingDate.Before(from) || je.PostingDate.After(to) {
				continue
			}
			out = append(out, je)
		}
		return nil
	})
	return out, err
}

// SaveBalanceSnapshot persists a balance snapshot keyed by
// company/year/period.
func (s *Storage) SaveBalanceSnapshot(snap BalanceSnapshot) error {
	key := fmt.Sprintf("%s_%04d_%02d", snap.CompanyCode, snap.FiscalYear, snap.FiscalPeriod)
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketBalanceSnapshots, key, snap) })
}

// GetBalanceSnapshot retrieves the snapshot for a company/year/period.
func (s *Storage) GetBalanceSnapshot(companyCode string, fiscalYear, fiscalPeriod int) (BalanceSnapshot, bool, error) {
	key := fmt.Sprintf("%s_%04d_%02d", companyCode, fiscalYear, fiscalPeriod)
	var snap BalanceSnapshot
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, BucketBalanceSnapshots, key, &snap)
		return err
	})
	return snap, found, err
}

// GetBalanceSnapshotsByCompany returns every snapshot for companyCode,
// ordered by fiscal year/period (guaranteed by the zero-padded key).
func (s *Storage) GetBalanceSnapshotsByCompany(companyCode string) ([]BalanceSnapshot, error) {
	prefix := []byte(companyCode + "_")
	var out []BalanceSnapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(BucketBalanceSnapshots).Cursor()
		for k, data := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, data = c.Next() {
			var snap BalanceSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("unmarshal balance snapshot %s: %w", k, err)
			}
			out = append(out, snap)
		}
		return nil
	})
	return out, err
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == string(prefix)
}

// SaveConsolidationJournal persists a group's elimination entries for
// one fiscal period.
func (s *Storage) SaveConsolidationJournal(cj ConsolidationJournal) error {
	key := fmt.Sprintf("%s_%04d_%02d", cj.GroupCode, cj.FiscalYear, cj.FiscalPeriod)
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketEliminationEntries, key, cj) })
}

// GetConsolidationJournal retrieves a group's elimination entries for
// one fiscal period.
func (s *Storage) GetConsolidationJournal(groupCode string, fiscalYear, fiscalPeriod int) (ConsolidationJournal, bool, error) {
	key := fmt.Sprintf("%s_%04d_%02d", groupCode, fiscalYear, fiscalPeriod)
	var cj ConsolidationJournal
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, BucketEliminationEntries, key, &cj)
		return err
	})
	return cj, found, err
}

// SaveFingerprint persists a sealed fingerprint container under name.
func (s *Storage) SaveFingerprint(name string, sealed []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketFingerprints).Put([]byte(name), sealed)
	})
}

// GetFingerprint retrieves a sealed fingerprint container by name.
func (s *Storage) GetFingerprint(name string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketFingerprints).Get([]byte(name))
		if v == nil {
			return nil
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, data != nil, err
}

// SaveIssueLog persists the recorded non-fatal conditions from one
// generation run under name, so they can be inspected after the fact
// without re-running generation.
func (s *Storage) SaveIssueLog(name string, issues []RecordedIssue) error {
	return s.db.Update(func(tx *bbolt.Tx) error { return putJSON(tx, BucketIssues, name, issues) })
}

// GetIssueLog retrieves a previously saved issue log by name.
func (s *Storage) GetIssueLog(name string) ([]RecordedIssue, bool, error) {
	var issues []RecordedIssue
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = getJSON(tx, BucketIssues, name, &issues)
		return err
	})
	return issues, found, err
}
