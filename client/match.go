package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

// reciprocityPageSize bounds the linear scan over the candidate's
// like collection. No index is assumed.
const reciprocityPageSize = 100

// MatchEngine runs the swipe state machine. Per (viewer, candidate)
// pair the conceptual states are Unseen, Passed, Liked and Matched,
// with Matched reachable only from Liked.
type MatchEngine struct {
	client *Client
	store  *SessionStore
	log    zerolog.Logger
	now    func() time.Time
}

func NewMatchEngine(client *Client, store *SessionStore) *MatchEngine {
	return &MatchEngine{
		client: client,
		store:  store,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
}

// SetLogger installs a logger for swipe outcomes.
func (m *MatchEngine) SetLogger(log zerolog.Logger) {
	m.log = log
}

func (m *MatchEngine) viewer() (string, error) {
	session, ok := m.store.Current()
	if !ok {
		return "", fypapp.AuthError{Kind: fypapp.AuthInvalidCredentials, Body: "no active session"}
	}
	return session.DID, nil
}

// SwipeLeft records a pass on the candidate. Repeated passes on the
// same candidate are accepted without error; dedup is the store's
// concern.
func (m *MatchEngine) SwipeLeft(ctx context.Context, candidate string) error {
	ctx, span := tracer.Start(ctx, "MatchEngine.SwipeLeft")
	defer span.End()

	viewer, err := m.viewer()
	if err != nil {
		return err
	}

	pass := fypapp.Pass{
		Subject:   candidate,
		CreatedAt: m.now().UTC().Format(time.RFC3339),
	}
	if _, err := m.client.CreateRecord(ctx, viewer, lexicons.Pass, "", pass); err != nil {
		if errors.Is(err, fypapp.RecordExistsError{}) {
			return nil
		}
		span.RecordError(err)
		return err
	}
	return nil
}

// SwipeRight records a like on the candidate and tests for
// reciprocity. It returns the match reference when the candidate had
// already liked the viewer back, or nil when no match exists yet.
//
// The like write and the reciprocity check are strictly sequenced: a
// failed like aborts the whole swipe, while a failed reciprocity
// check degrades to "no match determined yet" with the like standing.
func (m *MatchEngine) SwipeRight(ctx context.Context, candidate string, superLike bool) (*fypapp.RecordRef, error) {
	ctx, span := tracer.Start(ctx, "MatchEngine.SwipeRight")
	defer span.End()

	viewer, err := m.viewer()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC().Format(time.RFC3339)
	like := fypapp.Like{
		Subject:   candidate,
		CreatedAt: now,
		SuperLike: superLike,
	}
	if _, err := m.client.CreateRecord(ctx, viewer, lexicons.Like, "", like); err != nil {
		span.RecordError(errors.Wrap(err, "like write failed"))
		return nil, err
	}

	liked, err := m.hasLikedBack(ctx, candidate, viewer)
	if err != nil {
		// The like already written stands; reciprocity is simply
		// undetermined until a later pass over the collection.
		span.RecordError(err)
		m.log.Warn().Err(err).Str("candidate", candidate).Msg("reciprocity check failed, treating as no match")
		return nil, nil
	}
	if !liked {
		return nil, nil
	}

	user1, user2 := fypapp.SortPair(viewer, candidate)
	match := fypapp.Match{
		User1:     user1,
		User2:     user2,
		CreatedAt: now,
		IsActive:  true,
	}
	rkey := fypapp.MatchKey(viewer, candidate)

	ref, err := m.client.CreateRecord(ctx, viewer, lexicons.Match, rkey, match)
	if err != nil {
		// Both parties may detect reciprocity concurrently and race
		// to create the same deterministic key. The loser's write
		// collides with an identical record, so the collision is a
		// success.
		if errors.Is(err, fypapp.RecordExistsError{}) {
			existing := fypapp.RecordRef{URI: fypapp.ComposeAtURI(viewer, lexicons.Match, rkey)}
			m.log.Info().Str("rkey", rkey).Msg("match already created by the other side")
			return &existing, nil
		}
		span.RecordError(err)
		return nil, err
	}

	m.log.Info().Str("uri", ref.URI).Msg("match created")
	return &ref, nil
}

// hasLikedBack scans a bounded page of the candidate's like
// collection for a like whose subject is the viewer.
func (m *MatchEngine) hasLikedBack(ctx context.Context, candidate, viewer string) (bool, error) {
	records, err := m.client.ListRecords(ctx, candidate, lexicons.Like, reciprocityPageSize)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if fypapp.DecodeLike(r.Value).Subject == viewer {
			return true, nil
		}
	}
	return false, nil
}
