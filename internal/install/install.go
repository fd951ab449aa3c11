// Package install copies build products into a prefix, optionally below a
// sysroot: executables into bin/ and component resources into share/<id>/.
package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/forge/internal/builder"
	"github.com/anvil-platform/forge/internal/model"
)

// DefaultPrefix installs straight into the root of the sysroot.
const DefaultPrefix = "/"

// PropPrefix is the target property that overrides the configured prefix.
const PropPrefix = "prefix"

// executable suffixes dropped from installed binary names.
var suffixes = []string{".main", ".cli"}

type Options struct {
	Prefix  string
	Sysroot string
}

// Root is the directory everything is installed under.
func (o Options) Root() string {
	prefix := o.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if o.Sysroot == "" {
		return filepath.Clean(prefix)
	}
	return filepath.Join(o.Sysroot, prefix)
}

// ForTarget applies the install prefix recorded in the target's props, if any.
func (o Options) ForTarget(t *model.Target) (Options, error) {
	prefix, ok := t.Props[PropPrefix]
	if !ok || prefix == "" {
		return o, nil
	}
	if !filepath.IsAbs(prefix) {
		return o, fmt.Errorf("install: target %q: props.%s %q must be absolute", t.ID, PropPrefix, prefix)
	}
	o.Prefix = prefix
	return o, nil
}

type Installer struct {
	fs   afero.Fs
	opts Options
}

func New(fsys afero.Fs, opts Options) *Installer {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Installer{fs: fsys, opts: opts}
}

// BinaryName is the installed name of the executable component id.
func BinaryName(id string) string {
	for _, s := range suffixes {
		id = strings.TrimSuffix(id, s)
	}
	return id
}

// Install copies products and returns the installed paths in copy order.
// Library products contribute only their resources.
func (i *Installer) Install(ctx context.Context, products []builder.Product) ([]string, error) {
	logger := log.FromContext(ctx).WithValues("root", i.opts.Root())

	binDir := filepath.Join(i.opts.Root(), "bin")
	shareDir := filepath.Join(i.opts.Root(), "share")
	for _, dir := range []string{binDir, shareDir} {
		if err := i.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("install: %w", err)
		}
	}

	var installed []string
	for _, p := range products {
		c := p.Component
		if c.IsExecutable() {
			dst := filepath.Join(binDir, BinaryName(c.ID))
			logger.Info("installing executable", "component", c.ID, "to", dst)
			if err := i.copyFile(p.Path, dst, 0o755); err != nil {
				return installed, fmt.Errorf("install %s: %w", c.ID, err)
			}
			installed = append(installed, dst)
		}

		files, err := builder.Resources(i.fs, c)
		if err != nil {
			return installed, fmt.Errorf("install: %w", err)
		}
		resRoot := c.Subpath("res")
		for _, src := range files {
			rel, err := filepath.Rel(resRoot, src)
			if err != nil {
				return installed, fmt.Errorf("install %s: %w", c.ID, err)
			}
			dst := filepath.Join(shareDir, c.ID, rel)
			logger.V(1).Info("installing resource", "component", c.ID, "to", dst)
			if err := i.copyFile(src, dst, 0o644); err != nil {
				return installed, fmt.Errorf("install %s: %w", c.ID, err)
			}
			installed = append(installed, dst)
		}
	}
	return installed, nil
}

func (i *Installer) copyFile(src, dst string, mode os.FileMode) error {
	in, err := i.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := i.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := i.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
