package project

import (
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/internal/config"
	"github.com/anvil-platform/forge/internal/manifest"
	"github.com/anvil-platform/forge/internal/resolver"
)

const (
	liblogManifest = `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Component
metadata:
  name: liblog
spec:
  kind: lib
  provides: [log]
`
	appManifest = `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Component
metadata:
  name: app.main
spec:
  kind: exe
  requires: [log]
`
	hostTarget = `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Target
metadata:
  name: host
spec:
  routing:
    log: liblog
`
	brokenTarget = `apiVersion: forge.anvil-platform.io/v1alpha1
kind: Target
metadata:
  name: broken
spec:
  routing:
    log: libmissing
`
)

func testProject(t *testing.T, strict bool) *Project {
	t.Helper()
	return testProjectOn(t, afero.NewMemMapFs(), strict)
}

func testProjectOn(t *testing.T, fsys afero.Fs, strict bool) *Project {
	t.Helper()
	files := map[string]string{
		"/proj/src/liblog/manifest.yaml": liblogManifest,
		"/proj/src/app/manifest.yaml":    appManifest,
		"/proj/meta/targets/host.yaml":   hostTarget,
		"/proj/meta/targets/broken.yaml": brokenTarget,
		"/proj/meta/targets/ignored.txt": "not a target",
	}
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(body), 0o644))
	}

	cfg := config.Defaults()
	cfg.ProjectDir = "/proj"
	cfg.Strict = strict

	p, err := Open(log.IntoContext(context.Background(), logr.Discard()), fsys, cfg)
	require.NoError(t, err)
	return p
}

func TestOpenAndResolve(t *testing.T) {
	p := testProject(t, false)
	ctx := log.IntoContext(context.Background(), logr.Discard())

	assert.Equal(t, 2, p.Resolver.Len())

	ids, err := p.TargetIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"broken", "host"}, ids)

	res, err := p.Resolve(ctx, "")
	require.NoError(t, err)
	st, err := res.State("app.main")
	require.NoError(t, err)
	assert.True(t, st.Enabled)
	assert.Equal(t, "/proj/.forge/build/host", res.Target().BuildDir)

	res, err = p.Resolve(ctx, "broken")
	require.NoError(t, err)
	st, err = res.State("app.main")
	require.NoError(t, err)
	assert.False(t, st.Enabled)
	assert.Contains(t, st.Reason, `routed to "libmissing" which does not exist`)

	_, err = p.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, manifest.ErrTargetNotFound)
}

func TestResolve_Strict(t *testing.T) {
	p := testProject(t, true)
	ctx := log.IntoContext(context.Background(), logr.Discard())

	_, err := p.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.ErrorIs(t, err, resolver.ErrNotFound)
	assert.Contains(t, err.Error(), `invalid target "broken"`)

	_, err = p.Resolve(ctx, "host")
	require.NoError(t, err)
}

func TestResolve_TargetChangedOnDisk(t *testing.T) {
	fsys := afero.NewMemMapFs()
	p := testProjectOn(t, fsys, false)
	ctx := log.IntoContext(context.Background(), logr.Discard())

	first, err := p.Resolve(ctx, "host")
	require.NoError(t, err)
	again, err := p.Resolve(ctx, "host")
	require.NoError(t, err)
	assert.Same(t, first, again, "unchanged target should hit the cache")

	rerouted := strings.Replace(hostTarget, "log: liblog", "log: libmissing", 1)
	require.NoError(t, afero.WriteFile(fsys, "/proj/meta/targets/host.yaml", []byte(rerouted), 0o644))

	res, err := p.Resolve(ctx, "host")
	require.NoError(t, err)
	assert.NotSame(t, first, res)
	assert.Equal(t, "libmissing", res.Target().Routing["log"])
	st, err := res.State("app.main")
	require.NoError(t, err)
	assert.False(t, st.Enabled)

	cached, err := p.Resolve(ctx, "host")
	require.NoError(t, err)
	assert.Same(t, res, cached)
}

func TestResolve_RenamedTargetIsRejected(t *testing.T) {
	fsys := afero.NewMemMapFs()
	p := testProjectOn(t, fsys, false)
	ctx := log.IntoContext(context.Background(), logr.Discard())

	_, err := p.Resolve(ctx, "host")
	require.NoError(t, err)

	// A second file claiming the name "host" must not reach the cache.
	imposter := strings.Replace(brokenTarget, "name: broken", "name: host", 1)
	require.NoError(t, afero.WriteFile(fsys, "/proj/meta/targets/broken.yaml", []byte(imposter), 0o644))

	_, err = p.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata.name")

	res, err := p.Resolve(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, "liblog", res.Target().Routing["log"])
	st, err := res.State("app.main")
	require.NoError(t, err)
	assert.True(t, st.Enabled)
}
