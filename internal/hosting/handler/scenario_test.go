package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didweb-anoncreds/internal/hosting/handler"
	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/internal/hosting/service"
	"didweb-anoncreds/internal/hosting/store"
	jwttoken "didweb-anoncreds/internal/jwt_token"
	"didweb-anoncreds/pkg/testutil"
)

func TestPublishCredentialDefinitionScenario(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := jwttoken.NewJWTService("scenario-key", "didweb-anoncreds", "publishers")
	svc := service.New(store.NewMemory(), "https://issuer.example", service.WithLogger(logger))
	router := chi.NewRouter()
	handler.New(svc, jwttoken.NewJWTServiceAdapter(jwt), logger).Register(router)

	credDef := map[string]any{
		"issuerId": issuerDID,
		"schemaId": "did:web:issuer.example?service=anoncreds&relativeRef=/schema/abc",
		"type":     "CL",
		"tag":      "default",
		"value":    map[string]any{"primary": map[string]any{"n": "1"}},
	}
	id := resourceID(credDef)

	testutil.Given(t, "an issuer holding a publisher token", func(t *testing.T) {
		token, err := jwt.GeneratePublisherToken(issuerDID, time.Minute)
		require.NoError(t, err)

		testutil.When(t, "the credential definition is published", func(t *testing.T) {
			req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPut, "/credDef/"+id,
				map[string]any{"resource": credDef}), token)
			rr := testutil.DoRequest(router, req)
			require.Equal(t, http.StatusCreated, rr.Code)

			testutil.Then(t, "it is served at its content address", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/credDef/"+id, nil))
				require.Equal(t, http.StatusOK, rr.Code)
				envelope := testutil.UnmarshalResponse[models.Envelope](t, rr)
				assert.JSONEq(t, testutil.MustJSON(t, credDef), string(envelope.Resource))
			})

			testutil.Then(t, "publishing it again conflicts", func(t *testing.T) {
				req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPut, "/credDef/"+id,
					map[string]any{"resource": credDef}), token)
				testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusConflict, "conflict")
			})
		})
	})

	testutil.Given(t, "a token for another issuer", func(t *testing.T) {
		token, err := jwt.GeneratePublisherToken("did:web:mallory.example", time.Minute)
		require.NoError(t, err)

		testutil.Then(t, "publishing is forbidden", func(t *testing.T) {
			other := map[string]any{"issuerId": issuerDID, "tag": "other"}
			req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPut, "/credDef/"+resourceID(other),
				map[string]any{"resource": other}), token)
			testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusForbidden, "forbidden")
		})
	})
}
