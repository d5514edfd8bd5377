package client

import (
	"context"
	"net/url"
	"strconv"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

// ListedRecord pairs a record reference with its decoded generic body.
type ListedRecord struct {
	Ref   fypapp.RecordRef
	Value map[string]any
}

type wireRecord struct {
	URI   string         `json:"uri"`
	CID   string         `json:"cid"`
	Value map[string]any `json:"value"`
}

// CreateRecord writes a record into a repo collection. An empty rkey
// lets the store assign one.
func (c *Client) CreateRecord(ctx context.Context, repo, collection, rkey string, record fypapp.Record) (fypapp.RecordRef, error) {
	body := map[string]any{
		"repo":       repo,
		"collection": collection,
		"record":     fypapp.EncodeRecord(record),
	}
	if rkey != "" {
		body["rkey"] = rkey
	}

	var ref fypapp.RecordRef
	if err := c.Procedure(ctx, lexicons.CreateRecord, nil, body, &ref); err != nil {
		return fypapp.RecordRef{}, err
	}
	if ref.URI == "" {
		// Empty 2xx body: the write succeeded but the store returned
		// no reference, so compose one from the request when possible.
		if rkey != "" {
			ref.URI = fypapp.ComposeAtURI(repo, collection, rkey)
		}
	}
	return ref, nil
}

// GetRecord fetches a single record body.
func (c *Client) GetRecord(ctx context.Context, repo, collection, rkey string) (map[string]any, error) {
	params := url.Values{}
	params.Set("repo", repo)
	params.Set("collection", collection)
	params.Set("rkey", rkey)

	var out wireRecord
	if err := c.Query(ctx, lexicons.GetRecord, params, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// ListRecords fetches a single bounded page of a collection, in store
// order. Cursor continuation is a discovery concern, not offered here.
func (c *Client) ListRecords(ctx context.Context, repo, collection string, limit int) ([]ListedRecord, error) {
	params := url.Values{}
	params.Set("repo", repo)
	params.Set("collection", collection)
	params.Set("limit", strconv.Itoa(limit))

	var out struct {
		Records []wireRecord `json:"records"`
	}
	if err := c.Query(ctx, lexicons.ListRecords, params, &out); err != nil {
		return nil, err
	}

	listed := make([]ListedRecord, 0, len(out.Records))
	for _, r := range out.Records {
		listed = append(listed, ListedRecord{
			Ref:   fypapp.RecordRef{URI: r.URI, CID: r.CID},
			Value: r.Value,
		})
	}
	return listed, nil
}
