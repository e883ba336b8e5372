package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"remindme-server/models"
)

// DirectoryClient resolves actors and targets against the lookup service:
//
//	GET {base}/actors/{id}  -> models.Actor
//	GET {base}/targets/{id} -> models.Target
//
// A 404 means the record is gone.
type DirectoryClient struct {
	baseURL string
	client  *http.Client
}

func NewDirectoryClient(baseURL string, client *http.Client) *DirectoryClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &DirectoryClient{baseURL: baseURL, client: client}
}

func (d *DirectoryClient) GetActorByID(ctx context.Context, id string) (*models.Actor, error) {
	var actor models.Actor
	found, err := d.get(ctx, "/actors/"+url.PathEscape(id), &actor)
	if err != nil || !found {
		return nil, err
	}
	return &actor, nil
}

func (d *DirectoryClient) GetTargetByID(ctx context.Context, id string) (*models.Target, error) {
	var target models.Target
	found, err := d.get(ctx, "/targets/"+url.PathEscape(id), &target)
	if err != nil || !found {
		return nil, err
	}
	return &target, nil
}

func (d *DirectoryClient) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return false, errors.Wrap(err, "build directory request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, errors.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrapf(err, "decode %s", path)
	}
	return true, nil
}
