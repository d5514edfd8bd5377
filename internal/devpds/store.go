package devpds

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	fypapp "github.com/apiguave/fypapp-go"
)

var (
	ErrAccountExists = errors.New("account already exists")
	ErrNoAccount     = errors.New("account not found")
	ErrBadPassword   = errors.New("invalid password")
	ErrRecordExists  = errors.New("record already exists")
	ErrNoRecord      = errors.New("record not found")
)

// Account is a registered identity with its credential hash.
type Account struct {
	DID          string
	Handle       string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// StoredRecord is one record at rest, with its creation sequence for
// stable listing order.
type StoredRecord struct {
	URI       string
	CID       string
	Value     map[string]any
	Seq       int64
	CreatedAt time.Time
}

// Store is the in-memory state of the dev PDS: accounts indexed by
// handle, email and DID, and records keyed by repo/collection/rkey.
// Everything is disposable; nothing survives the process.
type Store struct {
	mu       sync.Mutex
	accounts *cache.Cache // handle -> Account
	byEmail  *cache.Cache // email -> handle
	byDID    *cache.Cache // did -> handle
	records  *cache.Cache // did/collection/rkey -> StoredRecord
	seq      atomic.Int64
}

func NewStore() *Store {
	return &Store{
		accounts: cache.New(cache.NoExpiration, 0),
		byEmail:  cache.New(cache.NoExpiration, 0),
		byDID:    cache.New(cache.NoExpiration, 0),
		records:  cache.New(cache.NoExpiration, 0),
	}
}

// CreateAccount registers a new identity and mints its DID.
func (s *Store) CreateAccount(handle, email, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.accounts.Get(handle); found {
		return Account{}, ErrAccountExists
	}
	if email != "" {
		if _, found := s.byEmail.Get(email); found {
			return Account{}, ErrAccountExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, errors.Wrap(err, "failed to hash password")
	}

	account := Account{
		DID:          "did:plc:" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts.Set(handle, account, cache.NoExpiration)
	if email != "" {
		s.byEmail.Set(email, handle, cache.NoExpiration)
	}
	s.byDID.Set(account.DID, handle, cache.NoExpiration)
	return account, nil
}

// Authenticate resolves an identifier (handle or email) and verifies
// the password.
func (s *Store) Authenticate(identifier, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := identifier
	if mapped, found := s.byEmail.Get(identifier); found {
		handle = mapped.(string)
	}

	raw, found := s.accounts.Get(handle)
	if !found {
		return Account{}, ErrNoAccount
	}
	account := raw.(Account)

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return Account{}, ErrBadPassword
	}
	return account, nil
}

// AccountByDID resolves a DID to its account.
func (s *Store) AccountByDID(did string) (Account, bool) {
	raw, found := s.byDID.Get(did)
	if !found {
		return Account{}, false
	}
	acc, found := s.accounts.Get(raw.(string))
	if !found {
		return Account{}, false
	}
	return acc.(Account), true
}

func recordKey(did, collection, rkey string) string {
	return did + "/" + collection + "/" + rkey
}

// PutRecord stores a record. With overwrite false a duplicate rkey
// fails with ErrRecordExists, mirroring a swap-violation response.
func (s *Store) PutRecord(did, collection, rkey string, value map[string]any, overwrite bool) (fypapp.RecordRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(did, collection, rkey)
	if !overwrite {
		if _, found := s.records.Get(key); found {
			return fypapp.RecordRef{}, ErrRecordExists
		}
	}

	rec := StoredRecord{
		URI:       fypapp.ComposeAtURI(did, collection, rkey),
		CID:       "bafy" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Value:     value,
		Seq:       s.seq.Add(1),
		CreatedAt: time.Now().UTC(),
	}
	s.records.Set(key, rec, cache.NoExpiration)
	return fypapp.RecordRef{URI: rec.URI, CID: rec.CID}, nil
}

// GetRecord fetches one record.
func (s *Store) GetRecord(did, collection, rkey string) (StoredRecord, error) {
	raw, found := s.records.Get(recordKey(did, collection, rkey))
	if !found {
		return StoredRecord{}, ErrNoRecord
	}
	return raw.(StoredRecord), nil
}

// ListRecords returns up to limit records of one collection in
// creation order.
func (s *Store) ListRecords(did, collection string, limit int) []StoredRecord {
	prefix := did + "/" + collection + "/"

	var out []StoredRecord
	for key, item := range s.records.Items() {
		if strings.HasPrefix(key, prefix) {
			out = append(out, item.Object.(StoredRecord))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Accounts returns every registered account in registration order.
func (s *Store) Accounts() []Account {
	var out []Account
	for _, item := range s.accounts.Items() {
		out = append(out, item.Object.(Account))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Handle < out[j].Handle
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
