package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etay-atar/Sandbox/internal/adapter/httpserver"
	"github.com/etay-atar/Sandbox/internal/credstore"
	"github.com/etay-atar/Sandbox/internal/dashboard"
	"github.com/etay-atar/Sandbox/internal/domain"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/sandbox"
	"github.com/etay-atar/Sandbox/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startBackend(t *testing.T, completeChance float64) *sandbox.Client {
	t.Helper()

	srv, err := httpserver.NewMockServer(httpserver.MockConfig{
		JWTSecret:      "e2e-secret",
		CompleteChance: completeChance,
		BcryptCost:     bcrypt.MinCost,
		AuthRate:       1000,
		AuthBurst:      1000,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := sandbox.New(sandbox.Options{BaseURL: ts.URL + "/api/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, client.WaitReady(context.Background(), sandbox.DefaultReadyPolicy))
	return client
}

func TestEndToEnd_UploadUntilReport(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end test")
	}
	ctx := context.Background()
	client := startBackend(t, 1)

	mgr := session.NewManager(credstore.NewMemory())
	require.NoError(t, mgr.Initialize(ctx))
	require.NoError(t, mgr.SignIn(ctx, client, domain.PlaceholderUsername, "correct horse"))
	require.True(t, mgr.IsAuthenticated())

	clock := clockwork.NewFakeClock()
	c := dashboard.New(client, mgr, clock, nil, dashboard.Config{
		ListInterval:     5 * time.Second,
		DetailInterval:   2 * time.Second,
		RequestTimeout:   5 * time.Second,
		FreezeOnTerminal: true,
	})
	t.Cleanup(c.Close)

	snapshot := func(cond func(dashboard.State) bool, msg string) {
		t.Helper()
		require.Eventually(t, func() bool { return cond(c.Snapshot()) }, 5*time.Second, 10*time.Millisecond, msg)
	}

	c.Mount()
	snapshot(func(s dashboard.State) bool { return !s.ListUpdatedAt.IsZero() }, "initial list")
	assert.Empty(t, c.Snapshot().Submissions)

	id, err := c.Upload(ctx, "sample.exe", strings.NewReader("MZ\x90\x00 sample"))
	require.NoError(t, err)
	assert.Equal(t, id, c.Snapshot().SelectedID)

	snapshot(func(s dashboard.State) bool {
		sub, ok := s.Selected()
		return ok && sub.Filename == "sample.exe"
	}, "list refreshed with the upload")

	snapshot(func(s dashboard.State) bool {
		return s.Detail != nil && s.Detail.Kind == domain.DetailProgress &&
			s.Detail.Progress.Status == domain.StatusProcessing && s.Detail.Progress.Progress == 10
	}, "first poll moves the submission to processing")

	clock.Advance(2 * time.Second)
	snapshot(func(s dashboard.State) bool { return s.Phase == dashboard.PhaseTerminal }, "report retrieved")

	report := c.Snapshot().Detail.Report
	assert.Equal(t, domain.VerdictMalicious, report.Verdict())
	score, ok := report.Score()
	assert.True(t, ok)
	assert.InDelta(t, 98.5, score, 0.001)

	require.NoError(t, mgr.Logout(ctx))
	st := c.Snapshot()
	assert.False(t, st.Authenticated)
	assert.Empty(t, st.Submissions)
	assert.Nil(t, st.Detail)
}

func TestEndToEnd_SignInWrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end test")
	}
	ctx := context.Background()
	client := startBackend(t, 0)

	first := session.NewManager(credstore.NewMemory())
	require.NoError(t, first.Initialize(ctx))
	require.NoError(t, first.SignIn(ctx, client, "alice", "right"))

	second := session.NewManager(credstore.NewMemory())
	require.NoError(t, second.Initialize(ctx))
	err := second.SignIn(ctx, client, "alice", "wrong")

	assert.True(t, apperrors.IsType(err, apperrors.TypeAuth))
	assert.False(t, second.IsAuthenticated())
}

func TestRemount_DuringInFlightListStillFetchesImmediately(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]domain.Submission{{SubmissionID: "a", Filename: "a.exe", Status: domain.StatusQueued}})
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	client, err := sandbox.New(sandbox.Options{BaseURL: ts.URL + "/api/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)

	mgr := session.NewManager(credstore.NewMemory())
	require.NoError(t, mgr.Initialize(ctx))
	require.NoError(t, mgr.Login(ctx, "tok", "alice"))

	clock := clockwork.NewFakeClock()
	c := dashboard.New(client, mgr, clock, nil, dashboard.DefaultConfig())
	t.Cleanup(c.Close)

	c.Mount()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	c.Unmount()
	c.Mount()
	close(release)

	require.Eventually(t, func() bool { return len(c.Snapshot().Submissions) == 1 }, time.Second, 5*time.Millisecond,
		"the remounted poller's immediate fetch must populate the list without a tick")
}
