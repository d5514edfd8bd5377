package client

import (
	"context"
	"net/url"
	"strconv"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

// Discovery retrieves candidate profiles in bounded pages. Filtering
// is the remote store's responsibility; nothing is re-filtered here.
type Discovery struct {
	client *Client
	store  *SessionStore
}

func NewDiscovery(client *Client, store *SessionStore) *Discovery {
	return &Discovery{
		client: client,
		store:  store,
	}
}

// Discover fetches one page of candidates. An empty next cursor means
// the terminal page was reached and the caller must stop paging. A
// remote bug returning the cursor it was just given is reported as
// terminal too, so paging loops always finish.
func (d *Discovery) Discover(ctx context.Context, limit int, cursor string) ([]fypapp.ProfileCard, string, error) {
	ctx, span := tracer.Start(ctx, "Discovery.Discover")
	defer span.End()

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if session, ok := d.store.Current(); ok {
		// Lets the store exclude already-swiped candidates and rank
		// by shared interests. Optional: discovery works signed out.
		params.Set("viewer", session.DID)
	}

	var out struct {
		Profiles []map[string]any `json:"profiles"`
		Cursor   string           `json:"cursor"`
	}
	if err := d.client.Query(ctx, lexicons.Discover, params, &out); err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	cards := make([]fypapp.ProfileCard, 0, len(out.Profiles))
	for _, m := range out.Profiles {
		cards = append(cards, fypapp.DecodeProfileCard(m))
	}

	next := out.Cursor
	if next == cursor {
		next = ""
	}
	return cards, next, nil
}
