package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/api/v1alpha1"
	"github.com/anvil-platform/forge/internal/config"
	"github.com/anvil-platform/forge/internal/project"
	"github.com/anvil-platform/forge/internal/status"
)

var manifests = map[string]string{
	"/proj/liblog/manifest.yaml": `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Component
metadata:
  name: liblog
spec:
  kind: lib
  description: Logging
  provides: [log]
`,
	"/proj/libnet/manifest.yaml": `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Component
metadata:
  name: libnet
spec:
  kind: lib
  requires: [log]
  provides: [net]
`,
	"/proj/app/manifest.yaml": `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Component
metadata:
  name: app.main
spec:
  kind: exe
  requires: [log, net]
`,
	"/proj/meta/targets/host.yaml": `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Target
metadata:
  name: host
spec:
  routing:
    log: liblog
`,
	"/proj/meta/targets/dangling.yaml": `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Target
metadata:
  name: dangling
spec:
  routing:
    log: libghost
`,
}

func testServer(t *testing.T, strict bool) http.Handler {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, body := range manifests {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(body), 0o644))
	}
	cfg := config.Defaults()
	cfg.ProjectDir = "/proj"
	cfg.Strict = strict

	p, err := project.Open(log.IntoContext(context.Background(), logr.Discard()), fsys, cfg)
	require.NoError(t, err)
	return New(p, logr.Discard()).Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, testServer(t, false), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListTargets(t *testing.T) {
	rec := get(t, testServer(t, false), "/api/v1/targets/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"dangling", "host"}, body["targets"])
}

func TestListComponents(t *testing.T) {
	h := testServer(t, false)

	rec := get(t, h, "/api/v1/targets/host/components")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var list v1alpha1.ComponentList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 3)

	rec = get(t, h, "/api/v1/targets/host/components?enabled=false")
	require.Equal(t, http.StatusOK, rec.Code)
	list = v1alpha1.ComponentList{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "app.main", list.Items[0].Name)
	assert.False(t, status.IsEnabled(&list.Items[0]))
	assert.Equal(t, `requires unrouted interface "net"`, list.Items[0].Status.Conditions[0].Message)

	rec = get(t, h, "/api/v1/targets/host/components?enabled=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetComponent(t *testing.T) {
	h := testServer(t, false)

	rec := get(t, h, "/api/v1/targets/host/components/liblog")
	require.Equal(t, http.StatusOK, rec.Code)
	var c v1alpha1.Component
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Logging", c.Spec.Description)
	assert.True(t, status.IsEnabled(&c))

	rec = get(t, h, "/api/v1/targets/host/components/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `component \"ghost\" not found`)

	rec = get(t, h, "/api/v1/targets/nope/components/liblog")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProviders(t *testing.T) {
	h := testServer(t, false)

	type provider struct {
		Name    string `json:"name"`
		Chosen  bool   `json:"chosen"`
		Enabled bool   `json:"enabled"`
	}
	var body struct {
		Interface string     `json:"interface"`
		Route     string     `json:"route"`
		Providers []provider `json:"providers"`
	}

	rec := get(t, h, "/api/v1/targets/host/interfaces/log/providers")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "liblog", body.Route)
	assert.Equal(t, []provider{{Name: "liblog", Chosen: true, Enabled: true}}, body.Providers)

	rec = get(t, h, "/api/v1/targets/host/interfaces/net/providers")
	require.Equal(t, http.StatusOK, rec.Code)
	body.Route, body.Providers = "", nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Route)
	assert.Equal(t, []provider{{Name: "libnet", Chosen: false, Enabled: true}}, body.Providers)

	rec = get(t, h, "/api/v1/targets/host/interfaces/gpu/providers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"interface":"gpu","providers":[]}`, rec.Body.String())

	rec = get(t, h, "/api/v1/targets/nope/interfaces/log/providers")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStrictTarget(t *testing.T) {
	rec := get(t, testServer(t, true), "/api/v1/targets/dangling/components")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "libghost")
}

func TestGetGraph(t *testing.T) {
	h := testServer(t, false)

	rec := get(t, h, "/api/v1/targets/host/graph.dot?show_disabled=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")
	assert.Contains(t, rec.Body.String(), `color="blue"`)
	assert.Contains(t, rec.Body.String(), "<B>app.main</B>")

	rec = get(t, h, "/api/v1/targets/host/graph.dot?scope=ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/api/v1/targets/host/graph.dot?only_libs=nah")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	h := testServer(t, false)
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/targets/host/components").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `forge_resolver_resolutions_total{target="host"}`)
}
