//go:build pact

package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/cricket-go/internal/cli/connection"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
)

const (
	pactConsumer = "cricket-cli"
	pactProvider = "cricket-api"

	stateUserExists    = "user ann@example.com exists"
	stateMatchesExist  = "matches exist"
	stateMatchMissing  = "no match with id m404"
	pactToken          = "eyJhbGciOiJIUzI1NiJ9.e30.sig"
	pactMissingMatchID = "m404"
)

func pactDir(t *testing.T, sub string) string {
	t.Helper()
	dir := filepath.Join("..", "..", "..", sub)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestCricketAPIContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pactConsumer,
		Provider: pactProvider,
		PactDir:  pactDir(t, "pacts"),
		LogDir:   pactDir(t, filepath.Join("bin", "pact-logs")),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=UTF-8", `application\/json(?:;\s?charset=(?i:utf-8))?`)
	bearer := matchers.Regex("Bearer "+pactToken, `^Bearer .+$`)

	pact.AddInteraction().
		Given(stateUserExists).
		UponReceiving("an email login with valid credentials").
		WithRequest(http.MethodPost, "/auth/email-login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"email":    matchers.S("ann@example.com"),
				"password": matchers.S("secret"),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token":       matchers.Like(pactToken),
				"displayName": matchers.Like("Ann"),
			})
		})

	pact.AddInteraction().
		Given(stateMatchesExist).
		UponReceiving("a request to list matches").
		WithRequest(http.MethodGet, "/matches", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"_id":      matchers.Like("m1"),
				"format":   matchers.Like("T20"),
				"date":     matchers.Like("2026-06-01T09:00:00.000Z"),
				"location": matchers.Like("Lord's"),
			}, 1))
		})

	pact.AddInteraction().
		Given(stateMatchMissing).
		UponReceiving("a request to delete a missing match").
		WithRequest(http.MethodDelete, "/matches/"+pactMissingMatchID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"error": matchers.Like("Match not found"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := connection.NewHTTPClient(fmt.Sprintf("http://%s:%d", config.Host, config.Port))
		auth := service.NewAuthAPI(client)
		matches := service.NewMatchAPI(client)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := auth.EmailLogin(ctx, service.EmailLoginRequest{Email: "ann@example.com", Password: "secret"})
		if err != nil {
			return fmt.Errorf("email login: %w", err)
		}
		if res.Token == "" {
			return errors.New("email login returned no token")
		}
		client.SetAuthToken(res.Token)

		list, err := matches.ListMatches(ctx)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		if len(list) == 0 || list[0].ID == "" {
			return fmt.Errorf("unexpected match list %+v", list)
		}

		_, err = matches.DeleteMatch(ctx, pactMissingMatchID)
		var httpErr *domain.HTTPError
		if !errors.As(err, &httpErr) || !httpErr.NotFound() {
			return fmt.Errorf("delete missing match: got %v, want 404", err)
		}
		if msg := domain.UserMessage(err, "Could not delete match"); msg != "Match not found" {
			return fmt.Errorf("delete missing match message = %q", msg)
		}
		return nil
	})
	require.NoError(t, err)
}
