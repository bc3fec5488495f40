package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dairyflow/internal/api"
	"dairyflow/internal/middleware"
	"dairyflow/internal/repository"
	"dairyflow/internal/service"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/tokenstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	farm := service.NewFarmService()
	auth := service.NewAuthService(repository.NewMemoryUserRepository(), farm, tokenstore.NewMemoryBackend(), service.AuthConfig{
		SigningKey:      "cli-test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		BcryptCost:      bcrypt.MinCost,
	})
	srv := httptest.NewServer(api.RegisterRoutes(
		api.NewAuthHandler(auth), api.NewCompanyHandler(farm, nil), farm, middleware.NewRateLimiter(nil, 1000)))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func setupCLI(t *testing.T) {
	t.Helper()
	t.Setenv("DAIRY_CLIENT_BASE_URL", startBackend(t))
	t.Setenv("DAIRY_STORE_BACKEND", "file")
	t.Setenv("DAIRY_STORE_FILE_PATH", filepath.Join(t.TempDir(), "session.json"))
}

func ctl(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := realMain(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_SessionLifecycle(t *testing.T) {
	setupCLI(t)

	code, out, errOut := ctl(t, "register-company", "-email", "owner@acme.com", "-password", "secret1", "-name", "Acme", "-phone", "555")
	require.Equal(t, 0, code, errOut)
	var profile v1.UserProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	require.Equal(t, "Acme", profile.Name)

	// The session persists across invocations.
	code, out, _ = ctl(t, "whoami")
	require.Equal(t, 0, code)
	require.Contains(t, out, `"email": "owner@acme.com"`)

	code, out, errOut = ctl(t, "cows", "create", `{"tag":"BR-001","name":"Mimosa"}`)
	require.Equal(t, 0, code, errOut)
	var cow v1.Cow
	require.NoError(t, json.Unmarshal([]byte(out), &cow))
	require.NotEmpty(t, cow.ID)

	code, out, _ = ctl(t, "cows", "list", "-q", "status=active")
	require.Equal(t, 0, code)
	var cows []v1.Cow
	require.NoError(t, json.Unmarshal([]byte(out), &cows))
	require.Len(t, cows, 1)

	code, out, _ = ctl(t, "dashboard")
	require.Equal(t, 0, code)
	require.Contains(t, out, `"totalCows": 1`)

	code, _, _ = ctl(t, "logout")
	require.Equal(t, 0, code)

	code, _, errOut = ctl(t, "whoami")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "not logged in")
}

func TestCLI_ErrorsPrintNormalizedMessage(t *testing.T) {
	setupCLI(t)

	code, _, errOut := ctl(t, "login", "-email", "ghost@acme.com", "-password", "nope")
	require.Equal(t, 1, code)
	require.Equal(t, "error: Invalid email or password", strings.TrimSpace(errOut))

	code, _, errOut = ctl(t, "cows", "list")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "Authorization header missing")
}

func TestCLI_Usage(t *testing.T) {
	code, _, errOut := ctl(t)
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "commands:")

	code, _, errOut = ctl(t, "milk-the-cow")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, `unknown command "milk-the-cow"`)

	setupCLI(t)
	code, _, errOut = ctl(t, "login", "-email", "only@acme.com")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "usage: dairyctl login")

	code, _, _ = ctl(t, "cows", "create")
	require.Equal(t, 2, code)
}
