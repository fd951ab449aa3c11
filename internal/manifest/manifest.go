// Package manifest loads component and target manifests from a project tree.
//
// Manifests are YAML or JSON documents of the forge.anvil-platform.io/v1alpha1
// API group. Components live anywhere under the project root in files named
// manifest.yaml, manifest.yml or manifest.json; targets live in a targets
// directory as <target id>.yaml, .yml or .json.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"

	forgev1alpha1 "github.com/anvil-platform/forge/api/v1alpha1"
	"github.com/anvil-platform/forge/internal/model"
)

var (
	manifestNames  = []string{"manifest.yaml", "manifest.yml", "manifest.json"}
	targetSuffixes = []string{".yaml", ".yml", ".json"}

	// ErrTargetNotFound is returned by Loader.Target when no file matches the id.
	ErrTargetNotFound = errors.New("target not found")
)

// Loader reads manifests from a filesystem.
type Loader struct {
	fs afero.Fs
	// BuildRoot is where targets without an explicit buildDir put their outputs.
	BuildRoot string
}

// NewLoader returns a Loader over fsys. A nil fsys means the OS filesystem.
func NewLoader(fsys afero.Fs, buildRoot string) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{fs: fsys, BuildRoot: buildRoot}
}

// Components walks root and parses every component manifest found, in lexical
// path order. Hidden directories and the build root are skipped.
func (l *Loader) Components(root string) ([]*model.Component, error) {
	var (
		components []*model.Component
		errs       []error
	)
	buildRoot := filepath.Clean(l.BuildRoot)

	walkErr := afero.Walk(l.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), ".") || (l.BuildRoot != "" && filepath.Clean(path) == buildRoot)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isManifestName(info.Name()) {
			return nil
		}
		c, err := l.Component(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		components = append(components, c)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("manifest: walk %s: %w", root, walkErr)
	}
	if len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}
	return components, nil
}

// Component parses a single component manifest.
func (l *Loader) Component(path string) (*model.Component, error) {
	var m forgev1alpha1.Component
	if err := l.decode(path, &m); err != nil {
		return nil, err
	}
	if errs := ValidateComponent(&m); len(errs) > 0 {
		return nil, fmt.Errorf("manifest: %s: %w", path, errs.ToAggregate())
	}
	return toComponent(&m, filepath.Dir(path)), nil
}

// Target loads the target with the given id from dir.
func (l *Loader) Target(dir, id string) (*model.Target, error) {
	for _, suffix := range targetSuffixes {
		path := filepath.Join(dir, id+suffix)
		ok, err := afero.Exists(l.fs, path)
		if err != nil {
			return nil, fmt.Errorf("manifest: stat %s: %w", path, err)
		}
		if !ok {
			continue
		}
		target, err := l.TargetFile(path)
		if err != nil {
			return nil, err
		}
		if target.ID != id {
			errs := field.ErrorList{field.Invalid(field.NewPath("metadata", "name"), target.ID,
				fmt.Sprintf("must match the file name %q", id))}
			return nil, fmt.Errorf("manifest: %s: %w", path, errs.ToAggregate())
		}
		return target, nil
	}
	return nil, fmt.Errorf("manifest: %w: %q in %s", ErrTargetNotFound, id, dir)
}

// TargetFile parses a single target manifest.
func (l *Loader) TargetFile(path string) (*model.Target, error) {
	var m forgev1alpha1.Target
	if err := l.decode(path, &m); err != nil {
		return nil, err
	}
	if errs := ValidateTarget(&m); len(errs) > 0 {
		return nil, fmt.Errorf("manifest: %s: %w", path, errs.ToAggregate())
	}
	return l.toTarget(&m), nil
}

// TargetIDs lists the ids of every target manifest in dir, sorted.
func (l *Loader) TargetIDs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest: read %s: %w", dir, err)
	}
	seen := map[string]bool{}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !contains(targetSuffixes, ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) decode(path string, into any) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("manifest: read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, into); err != nil {
		return fmt.Errorf("manifest: decode %s: %w", path, err)
	}
	return nil
}

func toComponent(m *forgev1alpha1.Component, dir string) *model.Component {
	kind, _ := model.ParseKind(string(m.Spec.Kind))

	subpaths := map[string]string{"res": filepath.Join(dir, "res")}
	for area, rel := range m.Spec.Subpaths {
		if filepath.IsAbs(rel) {
			subpaths[area] = rel
			continue
		}
		subpaths[area] = filepath.Join(dir, rel)
	}

	return &model.Component{
		ID:          m.Name,
		Kind:        kind,
		Description: m.Spec.Description,
		Version:     m.Spec.Version,
		Requires:    append([]string(nil), m.Spec.Requires...),
		Provides:    append([]string(nil), m.Spec.Provides...),
		Subpaths:    subpaths,
		Dir:         dir,
	}
}

func (l *Loader) toTarget(m *forgev1alpha1.Target) *model.Target {
	buildDir := m.Spec.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join(l.BuildRoot, m.Name)
	}
	return &model.Target{
		ID:          m.Name,
		Routing:     copyMap(m.Spec.Routing),
		Constraints: copyMap(m.Spec.Constraints),
		BuildDir:    buildDir,
		Props:       copyMap(m.Spec.Props),
	}
}

func isManifestName(name string) bool { return contains(manifestNames, name) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

