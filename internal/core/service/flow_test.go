package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/cricket-go/internal/cli/connection"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
	"github.com/yndnr/cricket-go/internal/storage"
	"github.com/yndnr/cricket-go/internal/testserver"
)

type app struct {
	srv     *testserver.Server
	kv      storage.KVEngine
	client  *connection.HTTPClient
	session *service.SessionManager
	auth    *service.AuthAPI
	matches *service.MatchAPI
	invites *service.InviteAPI
}

// newApp wires a client process against srv, sharing kv across restarts.
func newApp(t *testing.T, srv *testserver.Server, kv storage.KVEngine) *app {
	t.Helper()
	client := connection.NewHTTPClient(srv.URL)
	return &app{
		srv:     srv,
		kv:      kv,
		client:  client,
		session: service.NewSessionManager(storage.NewSessionStore(kv), client),
		auth:    service.NewAuthAPI(client),
		matches: service.NewMatchAPI(client),
		invites: service.NewInviteAPI(client),
	}
}

func TestFlow_LoginCreateMatch(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()
	srv.AddUser("a@b.c", "pw", "Ann")

	a := newApp(t, srv, storage.NewMemoryEngine())
	require.NoError(t, a.session.Restore(ctx))

	res, err := a.auth.EmailLogin(ctx, service.EmailLoginRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, a.session.SignIn(ctx, *res))
	require.True(t, a.client.HasAuthToken())

	m, err := a.matches.CreateMatch(ctx, service.CreateMatchRequest{
		Format:   "T20",
		Date:     "2026-01-01T10:00:00.000Z",
		Location: "Lord's",
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)

	rec, ok := srv.Last(domain.EndpointCreateMatch.Name)
	require.True(t, ok)
	require.Equal(t, "Bearer "+res.Token, rec.Authorization)

	login, ok := srv.Last(domain.EndpointEmailLogin.Name)
	require.True(t, ok)
	require.Empty(t, login.Authorization)
}

func TestFlow_NoHeaderBeforeSignIn(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()

	a := newApp(t, srv, storage.NewMemoryEngine())
	require.NoError(t, a.session.Restore(ctx))

	_, err := a.matches.ListMatches(ctx)
	require.NoError(t, err)

	rec, ok := srv.Last(domain.EndpointListMatches.Name)
	require.True(t, ok)
	require.Empty(t, rec.Authorization)

	_, err = a.invites.ListInvites(ctx)
	var httpErr *domain.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.True(t, httpErr.Unauthorized())
}

func TestFlow_RestoreAfterRestart(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()
	kv := storage.NewMemoryEngine()

	first := newApp(t, srv, kv)
	require.NoError(t, first.session.Restore(ctx))
	token := srv.IssueToken("ann")
	require.NoError(t, first.session.SignIn(ctx, domain.Credentials{Token: token, DisplayName: "Ann"}))

	second := newApp(t, srv, kv)
	require.NoError(t, second.session.Restore(ctx))
	s := second.session.Session()
	require.True(t, s.Authenticated())
	require.Equal(t, "Ann", s.Name())

	_, err := second.invites.ListInvites(ctx)
	require.NoError(t, err)
	rec, _ := srv.Last(domain.EndpointListInvites.Name)
	require.Equal(t, "Bearer "+token, rec.Authorization)
}

func TestFlow_SignOutClearsEverything(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()
	kv := storage.NewMemoryEngine()

	a := newApp(t, srv, kv)
	require.NoError(t, a.session.Restore(ctx))
	require.NoError(t, a.session.SignIn(ctx, domain.Credentials{Token: srv.IssueToken("ann"), DisplayName: "Ann"}))
	require.NoError(t, a.session.SignOut(ctx))

	require.Equal(t, domain.StateUnauthenticated, a.session.Session().State())
	require.False(t, a.client.HasAuthToken())
	for _, key := range []string{storage.KeyUserToken, storage.KeyUserName} {
		_, err := kv.Get(ctx, []byte(key))
		require.ErrorIs(t, err, storage.ErrKeyNotFound, key)
	}

	_, err := a.matches.ListMatches(ctx)
	require.NoError(t, err)
	rec, _ := srv.Last(domain.EndpointListMatches.Name)
	require.Empty(t, rec.Authorization)
}

func TestFlow_RestartAfterSignOut(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()
	kv := storage.NewMemoryEngine()

	first := newApp(t, srv, kv)
	require.NoError(t, first.session.Restore(ctx))
	require.NoError(t, first.session.SignIn(ctx, domain.Credentials{Token: srv.IssueToken("ann"), DisplayName: "Ann"}))
	require.NoError(t, first.session.SignOut(ctx))

	second := newApp(t, srv, kv)
	require.NoError(t, second.session.Restore(ctx))
	s := second.session.Session()
	require.Equal(t, domain.StateUnauthenticated, s.State())
	require.False(t, s.Loading)
	require.Empty(t, s.Token)
	require.Equal(t, domain.DefaultDisplayName, s.Name())
	require.False(t, second.client.HasAuthToken())

	_, err := second.matches.ListMatches(ctx)
	require.NoError(t, err)
	rec, _ := srv.Last(domain.EndpointListMatches.Name)
	require.Empty(t, rec.Authorization)
}

func TestFlow_DeleteMissingMatch(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()
	srv.Fail(domain.EndpointDeleteMatch.Name, 404, "not found")

	a := newApp(t, srv, storage.NewMemoryEngine())
	require.NoError(t, a.session.Restore(ctx))
	require.NoError(t, a.session.SignIn(ctx, domain.Credentials{Token: srv.IssueToken("ann")}))

	_, err := a.matches.DeleteMatch(ctx, "missing")
	require.Error(t, err)
	require.Equal(t, "not found", domain.UserMessage(err, "Could not delete match"))

	rec, _ := srv.Last(domain.EndpointDeleteMatch.Name)
	require.Equal(t, "/matches/missing", rec.Path)
}

func TestFlow_InviteRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := testserver.New()
	defer srv.Close()

	a := newApp(t, srv, storage.NewMemoryEngine())
	require.NoError(t, a.session.Restore(ctx))
	require.NoError(t, a.session.SignIn(ctx, domain.Credentials{Token: srv.IssueToken("ann")}))

	id := srv.AddMatch(domain.Match{Format: "ODI", Date: "2026-03-01T09:00:00.000Z", Location: "Oval"})
	_, err := a.invites.SendInvite(ctx, id, "bob")
	require.NoError(t, err)

	invites, err := a.invites.ListInvites(ctx)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.Equal(t, id, invites[0].MatchID)

	ack, err := a.invites.RespondInvite(ctx, invites[0].ID, true)
	require.NoError(t, err)
	require.Equal(t, "Invite accepted", ack.Message())

	inv, ok := srv.Invite(invites[0].ID)
	require.True(t, ok)
	require.Equal(t, "accepted", inv.Status)
}
