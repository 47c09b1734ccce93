// Package bump rewrites the version value inside manifest files, leaving
// every other byte untouched. The format is picked from the filename;
// each format is an independent transform that fails with a typed error
// when the expected version location is missing, never a silent no-op.
package bump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported marks a filename no rewriter knows how to handle.
var ErrUnsupported = errors.New("unsupported version file")

// ErrNoVersion marks a supported file whose version field is absent.
var ErrNoVersion = errors.New("version field not found")

// File applies newVersion to the manifest at path. It reports whether
// the file's bytes actually changed, so re-running a release does not
// re-stage untouched manifests.
func File(path, newVersion string) (bool, error) {
	transform, err := transformFor(filepath.Base(path))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	out, err := transform(string(data), newVersion)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if out == string(data) {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

type transformFunc func(contents, newVersion string) (string, error)

func transformFor(filename string) (transformFunc, error) {
	switch filename {
	case "Cargo.toml":
		return cargoToml, nil
	case "package.json":
		return packageJSON, nil
	case "pyproject.toml":
		return pyprojectToml, nil
	case "pom.xml":
		return pomXML, nil
	case "build.gradle", "build.gradle.kts":
		return gradle, nil
	}
	if strings.HasSuffix(filename, ".go") {
		return goSource, nil
	}
	return nil, ErrUnsupported
}
