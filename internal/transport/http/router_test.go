package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"onboardly/internal/registrar"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/testutil"
)

type fakeRegistrar struct {
	ping    *registrar.RawResponse
	pingErr error
	ip      string
	ipErr   error
}

func (f *fakeRegistrar) Ping(context.Context) (*registrar.RawResponse, error) {
	return f.ping, f.pingErr
}

func (f *fakeRegistrar) EgressIP(context.Context) (string, error) {
	return f.ip, f.ipErr
}

func newTestRouter(reg Registrar) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, nil, "*", reg)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&fakeRegistrar{})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
}

func TestMyIP(t *testing.T) {
	router := newTestRouter(&fakeRegistrar{ip: "203.0.113.7"})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/my-ip"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "ip", "203.0.113.7")
}

func TestMyIPUpstreamFailure(t *testing.T) {
	router := newTestRouter(&fakeRegistrar{ipErr: dErrors.New(dErrors.CodeUpstreamUnavailable, "echo service unreachable")})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/my-ip"))

	testutil.AssertStatus(t, rr, http.StatusBadGateway)
	testutil.AssertErrorCode(t, rr, "upstream_unavailable")
}

func TestPingAliases(t *testing.T) {
	router := newTestRouter(&fakeRegistrar{ping: &registrar.RawResponse{Status: "success", Message: "keys valid"}})

	for _, path := range []string{"/ping", "/test-keys"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "keyValid", true)
		testutil.AssertJSONContains(t, rr, "status", "success")
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&fakeRegistrar{})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodOptions, "/api/check-domain"))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
