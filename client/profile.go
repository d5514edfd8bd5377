package client

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

// PictureStore supplies opaque reference strings for local image
// bytes. It is an external collaborator and may fail independently of
// profile creation.
type PictureStore interface {
	Put(ctx context.Context, data []byte) (string, error)
}

// Profiles manages the singleton profile record of the signed-in
// identity and profile reads for any actor.
type Profiles struct {
	client *Client
	store  *SessionStore
	log    zerolog.Logger
}

func NewProfiles(client *Client, store *SessionStore) *Profiles {
	return &Profiles{
		client: client,
		store:  store,
		log:    zerolog.Nop(),
	}
}

// SetLogger installs a logger for profile operations.
func (p *Profiles) SetLogger(log zerolog.Logger) {
	p.log = log
}

func (p *Profiles) currentDID() (string, error) {
	session, ok := p.store.Current()
	if !ok {
		return "", fypapp.AuthError{Kind: fypapp.AuthInvalidCredentials, Body: "no active session"}
	}
	return session.DID, nil
}

// Create writes the profile record under the fixed "self" key.
func (p *Profiles) Create(ctx context.Context, profile fypapp.Profile) (fypapp.RecordRef, error) {
	did, err := p.currentDID()
	if err != nil {
		return fypapp.RecordRef{}, err
	}
	return p.client.CreateRecord(ctx, did, lexicons.Profile, lexicons.RKeySelf, profile)
}

// Exists reports whether an identity has published a profile.
func (p *Profiles) Exists(ctx context.Context, did string) (bool, error) {
	_, err := p.client.GetRecord(ctx, did, lexicons.Profile, lexicons.RKeySelf)
	if err != nil {
		if errors.Is(err, fypapp.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get fetches a profile view for any actor. No authentication needed.
func (p *Profiles) Get(ctx context.Context, actor string) (fypapp.ProfileView, error) {
	params := url.Values{}
	params.Set("actor", actor)

	var out map[string]any
	if err := p.client.Query(ctx, lexicons.GetProfile, params, &out); err != nil {
		return fypapp.ProfileView{}, err
	}
	return fypapp.DecodeProfileView(out), nil
}

// Update replaces the signed-in identity's profile.
func (p *Profiles) Update(ctx context.Context, profile fypapp.Profile) (fypapp.RecordRef, error) {
	ctx, span := tracer.Start(ctx, "Profiles.Update")
	defer span.End()

	body := map[string]any{
		"profile": fypapp.EncodeRecord(profile),
	}
	var ref fypapp.RecordRef
	if err := p.client.Procedure(ctx, lexicons.UpdateProfile, nil, body, &ref); err != nil {
		span.RecordError(err)
		return fypapp.RecordRef{}, err
	}
	return ref, nil
}

// SetPhotos read-modify-writes the photo references of the signed-in
// identity's profile.
func (p *Profiles) SetPhotos(ctx context.Context, refs []string) error {
	did, err := p.currentDID()
	if err != nil {
		return err
	}

	view, err := p.Get(ctx, did)
	if err != nil {
		return errors.Wrap(err, "failed to load current profile")
	}
	if view.Profile == nil {
		return fypapp.NotFoundError{Resource: "profile"}
	}

	profile := *view.Profile
	photos := make([]fypapp.PhotoRef, 0, len(refs))
	for _, ref := range refs {
		photos = append(photos, fypapp.PhotoRef{Ref: ref})
	}
	profile.Photos = photos

	_, err = p.Update(ctx, profile)
	return err
}

// CreateWithPhotos publishes a profile and then uploads the given
// pictures. Picture storage failing does not fail profile creation:
// the profile simply keeps an empty photo list.
func (p *Profiles) CreateWithPhotos(ctx context.Context, profile fypapp.Profile, pictures [][]byte, store PictureStore) (fypapp.RecordRef, error) {
	profile.Photos = []fypapp.PhotoRef{}
	ref, err := p.Create(ctx, profile)
	if err != nil {
		return fypapp.RecordRef{}, err
	}

	if len(pictures) == 0 || store == nil {
		return ref, nil
	}

	refs := make([]string, 0, len(pictures))
	for _, data := range pictures {
		name, err := store.Put(ctx, data)
		if err != nil {
			p.log.Warn().Err(err).Msg("picture upload failed, keeping empty photo list")
			refs = nil
			break
		}
		refs = append(refs, name)
	}
	if len(refs) == 0 {
		return ref, nil
	}

	if err := p.SetPhotos(ctx, refs); err != nil {
		p.log.Warn().Err(err).Msg("photo update failed, profile stands without photos")
	}
	return ref, nil
}
