package devpds

import (
	"testing"

	"github.com/pkg/errors"
)

func TestCreateAccountAndAuthenticate(t *testing.T) {
	store := NewStore()

	account, err := store.CreateAccount("alice-example-com.test", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if account.DID == "" || len(account.DID) != len("did:plc:")+24 {
		t.Fatalf("unexpected did: %s", account.DID)
	}

	byHandle, err := store.Authenticate("alice-example-com.test", "password123")
	if err != nil || byHandle.DID != account.DID {
		t.Fatalf("authenticate by handle failed: %v", err)
	}
	byEmail, err := store.Authenticate("alice@example.com", "password123")
	if err != nil || byEmail.DID != account.DID {
		t.Fatalf("authenticate by email failed: %v", err)
	}

	if _, err := store.Authenticate("alice-example-com.test", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected bad password, got %v", err)
	}
	if _, err := store.Authenticate("nobody.test", "password123"); !errors.Is(err, ErrNoAccount) {
		t.Fatalf("expected no account, got %v", err)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	store := NewStore()
	if _, err := store.CreateAccount("alice.test", "alice@example.com", "password123"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.CreateAccount("alice.test", "other@example.com", "password123"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("duplicate handle must fail, got %v", err)
	}
	if _, err := store.CreateAccount("alice2.test", "alice@example.com", "password123"); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("duplicate email must fail, got %v", err)
	}
}

func TestPutRecordConflictAndOverwrite(t *testing.T) {
	store := NewStore()
	value := map[string]any{"displayName": "Alice"}

	if _, err := store.PutRecord("did:plc:a", "com.fypapp.profile", "self", value, false); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := store.PutRecord("did:plc:a", "com.fypapp.profile", "self", value, false); !errors.Is(err, ErrRecordExists) {
		t.Fatalf("duplicate rkey must conflict, got %v", err)
	}

	updated := map[string]any{"displayName": "Alice B"}
	if _, err := store.PutRecord("did:plc:a", "com.fypapp.profile", "self", updated, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	rec, err := store.GetRecord("did:plc:a", "com.fypapp.profile", "self")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.Value["displayName"] != "Alice B" {
		t.Fatalf("overwrite not applied: %+v", rec.Value)
	}
}

func TestListRecordsOrderAndLimit(t *testing.T) {
	store := NewStore()
	for _, rkey := range []string{"one", "two", "three"} {
		if _, err := store.PutRecord("did:plc:a", "com.fypapp.like", rkey, map[string]any{"subject": rkey}, false); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	all := store.ListRecords("did:plc:a", "com.fypapp.like", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Seq <= all[i-1].Seq {
			t.Fatalf("records must come back in creation order")
		}
	}

	limited := store.ListRecords("did:plc:a", "com.fypapp.like", 2)
	if len(limited) != 2 {
		t.Fatalf("limit not applied, got %d", len(limited))
	}
}
