package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

func TestSwipeRightWithoutReciprocity(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signedUpActor("alice@example.com", "password123")
	bob := env.signedUpActor("bob@example.com", "password123")
	ctx := context.Background()

	ref, err := alice.matches.SwipeRight(ctx, bob.session.DID, false)
	if err != nil {
		t.Fatalf("swipe right failed: %v", err)
	}
	if ref != nil {
		t.Fatalf("no match expected before the candidate likes back, got %+v", ref)
	}

	likes, err := alice.client.ListRecords(ctx, alice.session.DID, lexicons.Like, 10)
	if err != nil {
		t.Fatalf("listing likes failed: %v", err)
	}
	if len(likes) != 1 || fypapp.DecodeLike(likes[0].Value).Subject != bob.session.DID {
		t.Fatalf("like record not written: %+v", likes)
	}
}

func TestMutualLikeCreatesMatch(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signedUpActor("alice@example.com", "password123")
	bob := env.signedUpActor("bob@example.com", "password123")
	ctx := context.Background()

	if ref, err := alice.matches.SwipeRight(ctx, bob.session.DID, false); err != nil || ref != nil {
		t.Fatalf("first swipe must yield no match: %v %v", ref, err)
	}

	ref, err := bob.matches.SwipeRight(ctx, alice.session.DID, false)
	if err != nil {
		t.Fatalf("reciprocal swipe failed: %v", err)
	}
	if ref == nil {
		t.Fatalf("mutual like must produce a match")
	}

	rkey := fypapp.MatchKey(alice.session.DID, bob.session.DID)
	if !strings.HasSuffix(ref.URI, "/"+rkey) {
		t.Fatalf("match uri %s must end in the deterministic key %s", ref.URI, rkey)
	}

	value, err := bob.client.GetRecord(ctx, bob.session.DID, lexicons.Match, rkey)
	if err != nil {
		t.Fatalf("match record not retrievable at deterministic key: %v", err)
	}
	match := fypapp.DecodeMatch(value)
	user1, user2 := fypapp.SortPair(alice.session.DID, bob.session.DID)
	if match.User1 != user1 || match.User2 != user2 {
		t.Fatalf("match parties must be stored in sorted order: %+v", match)
	}
	if !match.IsActive {
		t.Fatalf("fresh match must be active")
	}
}

func TestSwipeRightMatchConflictIsSuccess(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signedUpActor("alice@example.com", "password123")
	bob := env.signedUpActor("bob@example.com", "password123")
	ctx := context.Background()

	if _, err := alice.matches.SwipeRight(ctx, bob.session.DID, false); err != nil {
		t.Fatalf("swipe failed: %v", err)
	}
	first, err := bob.matches.SwipeRight(ctx, alice.session.DID, false)
	if err != nil || first == nil {
		t.Fatalf("expected a match: %v %v", first, err)
	}

	// A second reciprocity-detecting swipe collides with the match
	// already at the deterministic key. The collision reads as success.
	again, err := bob.matches.SwipeRight(ctx, alice.session.DID, false)
	if err != nil {
		t.Fatalf("colliding match write must not fail: %v", err)
	}
	if again == nil || again.URI != first.URI {
		t.Fatalf("expected the existing match reference %s, got %+v", first.URI, again)
	}
}

func TestSwipeLeftIdempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signedUpActor("alice@example.com", "password123")
	bob := env.signedUpActor("bob@example.com", "password123")
	ctx := context.Background()

	if err := alice.matches.SwipeLeft(ctx, bob.session.DID); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if err := alice.matches.SwipeLeft(ctx, bob.session.DID); err != nil {
		t.Fatalf("repeated pass must be accepted: %v", err)
	}
}

func TestSwipeRightRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	a := env.newActor()

	_, err := a.matches.SwipeRight(context.Background(), "did:plc:someone", false)
	var ae fypapp.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError without a session, got %T: %v", err, err)
	}
}

func TestSwipeRightLikeWriteFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"InternalError"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewSessionStore()
	store.set(fypapp.Session{DID: "did:plc:viewer", AccessToken: "tok"})
	matches := NewMatchEngine(New(srv.URL, store), store)

	ref, err := matches.SwipeRight(context.Background(), "did:plc:candidate", false)
	if err == nil {
		t.Fatalf("a failed like write must abort the swipe")
	}
	if ref != nil {
		t.Fatalf("no match reference on an aborted swipe")
	}
}

func TestSwipeRightReciprocityFailureDegrades(t *testing.T) {
	// Writes succeed, reads blow up: the like stands and the swipe
	// reports no match rather than an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"uri":"at://did:plc:viewer/com.fypapp.like/abc","cid":"bafyx"}`))
			return
		}
		http.Error(w, `{"error":"InternalError"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewSessionStore()
	store.set(fypapp.Session{DID: "did:plc:viewer", AccessToken: "tok"})
	matches := NewMatchEngine(New(srv.URL, store), store)

	ref, err := matches.SwipeRight(context.Background(), "did:plc:candidate", false)
	if err != nil {
		t.Fatalf("reciprocity failure must degrade, not fail: %v", err)
	}
	if ref != nil {
		t.Fatalf("degraded swipe must report no match, got %+v", ref)
	}
}
