package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindme-server/models"
)

func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/actors/alice", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Actor{ID: "alice", Username: "alice"})
	})
	mux.HandleFunc("/targets/post-x", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Target{ID: "post-x", Title: "Post X", Locator: "https://example.com/x"})
	})
	mux.HandleFunc("/targets/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectoryClient_Found(t *testing.T) {
	srv := newDirectoryServer(t)
	d := NewDirectoryClient(srv.URL, srv.Client())

	actor, err := d.GetActorByID(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Equal(t, "alice", actor.Username)

	target, err := d.GetTargetByID(context.Background(), "post-x")
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "Post X", target.Title)
	assert.Equal(t, "https://example.com/x", target.Locator)
}

func TestDirectoryClient_NotFound(t *testing.T) {
	srv := newDirectoryServer(t)
	d := NewDirectoryClient(srv.URL, srv.Client())

	actor, err := d.GetActorByID(context.Background(), "deleted-user")
	require.NoError(t, err)
	assert.Nil(t, actor)

	target, err := d.GetTargetByID(context.Background(), "removed")
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestDirectoryClient_ServerError(t *testing.T) {
	srv := newDirectoryServer(t)
	d := NewDirectoryClient(srv.URL, srv.Client())

	target, err := d.GetTargetByID(context.Background(), "broken")
	assert.Error(t, err)
	assert.Nil(t, target)
}

func TestDirectoryClient_FeedsReminderJob(t *testing.T) {
	srv := newDirectoryServer(t)
	msgr := &fakeMessenger{}
	job := NewReminderJob(NewDirectoryClient(srv.URL, srv.Client()), msgr)

	status, err := job.OnFire(context.Background(), models.ReminderPayload{ActorID: "alice", TargetID: "post-x"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDelivered, status)

	status, err = job.OnFire(context.Background(), models.ReminderPayload{ActorID: "alice", TargetID: "broken"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSkipped, status)
	assert.Len(t, msgr.Sent(), 1)
}
