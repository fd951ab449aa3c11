// Package builder plans build products for the enabled components of a
// target. It does not compile anything; it decides which components take
// part and where their outputs live.
package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/resolver"
)

// All selects every enabled component of the target.
const All = "all"

// Product pairs a component with the artifact it builds to.
type Product struct {
	Component *model.Component
	Path      string
}

// Products returns one product per enabled component selected by selector:
// All, or a component id meaning that component plus its closure.
func Products(res *resolver.Resolution, selector string) ([]Product, error) {
	seq := res.IterEnabled()
	if selector != "" && selector != All {
		st, err := res.State(selector)
		if err != nil {
			return nil, fmt.Errorf("builder: %w", err)
		}
		if !st.Enabled {
			return nil, fmt.Errorf("builder: component %q is disabled: %s", selector, st.Reason)
		}
		if seq, err = res.InScope(selector); err != nil {
			return nil, fmt.Errorf("builder: %w", err)
		}
	}

	buildDir := res.Target().BuildDir
	var products []Product
	for c := range seq {
		products = append(products, Product{Component: c, Path: OutputPath(buildDir, c)})
	}
	return products, nil
}

// OutputPath is where c's artifact lands under buildDir.
func OutputPath(buildDir string, c *model.Component) string {
	switch c.Kind {
	case model.Executable:
		return filepath.Join(buildDir, "bin", c.ID+".out")
	case model.Library:
		return filepath.Join(buildDir, "lib", c.ID+".a")
	default:
		return filepath.Join(buildDir, c.ID)
	}
}

// Resources lists the files under c's "res" subpath, sorted. A missing
// resource directory yields no files.
func Resources(fsys afero.Fs, c *model.Component) ([]string, error) {
	root := c.Subpath("res")
	if root == "" {
		return nil, nil
	}

	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("builder: list resources of %s: %w", c.ID, err)
	}
	sort.Strings(files)
	return files, nil
}
