package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

type fakePictureStore struct {
	puts int
	fail bool
}

func (f *fakePictureStore) Put(ctx context.Context, data []byte) (string, error) {
	f.puts++
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	return fmt.Sprintf("pic-%d", f.puts), nil
}

func TestProfileCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	a := env.signedUpActor("alice@example.com", "password123")
	ctx := context.Background()

	ref, err := a.profiles.Create(ctx, basicProfile("Alice", "hiking"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ref.URI == "" {
		t.Fatalf("create must return a record reference")
	}

	view, err := a.profiles.Get(ctx, a.session.DID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Profile == nil || view.Profile.DisplayName == nil || *view.Profile.DisplayName != "Alice" {
		t.Fatalf("unexpected profile view: %+v", view.Profile)
	}

	exists, err := a.profiles.Exists(ctx, a.session.DID)
	if err != nil || !exists {
		t.Fatalf("expected profile to exist: %v %v", exists, err)
	}
	exists, err = a.profiles.Exists(ctx, "did:plc:nobodyhome")
	if err != nil || exists {
		t.Fatalf("expected no profile for unknown actor: %v %v", exists, err)
	}
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t)
	a := env.signedUpActor("alice@example.com", "password123")
	ctx := context.Background()

	if _, err := a.profiles.Create(ctx, basicProfile("Alice")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := basicProfile("Alice")
	updated.Bio = strPtr("loves long walks")
	if _, err := a.profiles.Update(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	view, err := a.profiles.Get(ctx, a.session.DID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Profile.Bio == nil || *view.Profile.Bio != "loves long walks" {
		t.Fatalf("update not reflected: %+v", view.Profile)
	}
}

func TestCreateWithPhotos(t *testing.T) {
	env := newTestEnv(t)
	a := env.signedUpActor("alice@example.com", "password123")
	ctx := context.Background()

	pics := &fakePictureStore{}
	_, err := a.profiles.CreateWithPhotos(ctx, basicProfile("Alice"), [][]byte{{1}, {2}}, pics)
	if err != nil {
		t.Fatalf("create with photos failed: %v", err)
	}
	if pics.puts != 2 {
		t.Fatalf("expected 2 uploads, got %d", pics.puts)
	}

	view, err := a.profiles.Get(ctx, a.session.DID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(view.Profile.Photos) != 2 {
		t.Fatalf("expected 2 photo refs, got %+v", view.Profile.Photos)
	}
}

func TestCreateWithPhotosUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	a := env.signedUpActor("alice@example.com", "password123")
	ctx := context.Background()

	pics := &fakePictureStore{fail: true}
	ref, err := a.profiles.CreateWithPhotos(ctx, basicProfile("Alice"), [][]byte{{1}}, pics)
	if err != nil {
		t.Fatalf("upload failure must not fail profile creation: %v", err)
	}
	if ref.URI == "" {
		t.Fatalf("profile reference expected despite upload failure")
	}

	view, err := a.profiles.Get(ctx, a.session.DID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(view.Profile.Photos) != 0 {
		t.Fatalf("profile must keep an empty photo list, got %+v", view.Profile.Photos)
	}
}
