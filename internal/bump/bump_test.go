package bump

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trunkrel/trunkrel/internal/logging"
)

func writeManifest(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCargoToml(t *testing.T) {
	in := `[package]
name = "widget"
version = "1.2.3"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`
	path := writeManifest(t, "Cargo.toml", in)
	changed, err := File(path, "2.0.0")
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}
	want := `[package]
name = "widget"
version = "2.0.0"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`
	if got := readBack(t, path); got != want {
		t.Fatalf("Cargo.toml = %q, want %q", got, want)
	}
}

func TestCargoTomlWorkspaceFallback(t *testing.T) {
	in := `[workspace]
members = ["crates/*"]

[workspace.package]
version = "0.4.1"
`
	path := writeManifest(t, "Cargo.toml", in)
	if _, err := File(path, "0.5.0"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	got := readBack(t, path)
	if want := `version = "0.5.0"`; !contains(got, want) {
		t.Fatalf("missing %q in:\n%s", want, got)
	}
}

func TestCargoTomlDependencyVersionUntouched(t *testing.T) {
	in := `[dependencies]
serde = "1.0"

[dependencies.tokio]
version = "1.38"
`
	path := writeManifest(t, "Cargo.toml", in)
	if _, err := File(path, "9.9.9"); !errors.Is(err, ErrNoVersion) {
		t.Fatalf("expected ErrNoVersion, got %v", err)
	}
	if got := readBack(t, path); got != in {
		t.Fatalf("file modified on failure:\n%s", got)
	}
}

func TestPackageJSONPreservesKeyOrder(t *testing.T) {
	in := `{
  "name": "widget",
  "version": "1.2.3",
  "private": true,
  "scripts": {
    "build": "tsc"
  },
  "dependencies": {
    "left-pad": "^1.3.0"
  }
}
`
	path := writeManifest(t, "package.json", in)
	if _, err := File(path, "2.0.0"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	want := `{
  "name": "widget",
  "version": "2.0.0",
  "private": true,
  "scripts": {
    "build": "tsc"
  },
  "dependencies": {
    "left-pad": "^1.3.0"
  }
}
`
	if got := readBack(t, path); got != want {
		t.Fatalf("package.json = %q, want %q", got, want)
	}
}

func TestPackageJSONKeysBeforeVersionSurvive(t *testing.T) {
	// The version value sits between other entries; none of them may end
	// up holding the version's bytes after the rewrite.
	in := `{
  "name": "widget",
  "description": "a gadget",
  "version": "1.2.3",
  "license": "MIT",
  "keywords": [
    "gadget",
    "widget"
  ]
}
`
	path := writeManifest(t, "package.json", in)
	if _, err := File(path, "9.8.7"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	got := readBack(t, path)
	for _, want := range []string{
		`"name": "widget"`,
		`"description": "a gadget"`,
		`"version": "9.8.7"`,
		`"license": "MIT"`,
	} {
		if !contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if contains(got, `"name": "9.8.7"`) || contains(got, `"1.2.3"`) {
		t.Fatalf("neighboring values corrupted:\n%s", got)
	}
}

func TestPyprojectToml(t *testing.T) {
	in := `[project]
name = "widget"
version = "1.2.3"
`
	path := writeManifest(t, "pyproject.toml", in)
	if _, err := File(path, "1.3.0"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if got := readBack(t, path); !contains(got, `version = "1.3.0"`) {
		t.Fatalf("unexpected pyproject.toml:\n%s", got)
	}
}

func TestPyprojectTomlPoetryFallback(t *testing.T) {
	in := `[tool.poetry]
name = "widget"
version = "1.2.3"
`
	path := writeManifest(t, "pyproject.toml", in)
	if _, err := File(path, "1.3.0"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if got := readBack(t, path); !contains(got, `version = "1.3.0"`) {
		t.Fatalf("unexpected pyproject.toml:\n%s", got)
	}
}

func TestPomXMLSkipsParentVersion(t *testing.T) {
	in := `<project>
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.acme</groupId>
    <version>7.7.7</version>
  </parent>
  <artifactId>widget</artifactId>
  <version>1.2.3</version>
  <dependencies>
    <dependency>
      <version>5.5.5</version>
    </dependency>
  </dependencies>
</project>
`
	path := writeManifest(t, "pom.xml", in)
	if _, err := File(path, "2.0.0"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	got := readBack(t, path)
	if !contains(got, "<version>7.7.7</version>") {
		t.Fatalf("parent version was touched:\n%s", got)
	}
	if !contains(got, "<version>2.0.0</version>") {
		t.Fatalf("project version not rewritten:\n%s", got)
	}
	if !contains(got, "<version>5.5.5</version>") {
		t.Fatalf("dependency version was touched:\n%s", got)
	}
}

func TestGradleSkipsDependencyStrings(t *testing.T) {
	in := `plugins {
    id("java")
}

version = "1.2.3"

dependencies {
    implementation("org.acme:widget:4.5.6")
}
`
	path := writeManifest(t, "build.gradle.kts", in)
	if _, err := File(path, "1.2.4"); err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	got := readBack(t, path)
	if !contains(got, `version = "1.2.4"`) {
		t.Fatalf("version not rewritten:\n%s", got)
	}
	if !contains(got, "org.acme:widget:4.5.6") {
		t.Fatalf("dependency coordinate was touched:\n%s", got)
	}
}

func TestGoSourceVarAndConst(t *testing.T) {
	for _, in := range []string{
		"package main\n\nvar Version = \"1.2.3\"\n",
		"package main\n\nconst Version = \"1.2.3\"\n",
		"package main\n\nconst Version string = \"1.2.3\"\n",
	} {
		path := writeManifest(t, "version.go", in)
		if _, err := File(path, "1.3.0"); err != nil {
			t.Fatalf("File returned error for %q: %v", in, err)
		}
		if got := readBack(t, path); !contains(got, `"1.3.0"`) {
			t.Fatalf("version not rewritten in:\n%s", got)
		}
	}
}

func TestFileUnsupported(t *testing.T) {
	path := writeManifest(t, "setup.cfg", "version = 1.2.3\n")
	if _, err := File(path, "2.0.0"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFileUnchangedWhenVersionEqual(t *testing.T) {
	in := "[package]\nversion = \"1.2.3\"\n"
	path := writeManifest(t, "Cargo.toml", in)
	changed, err := File(path, "1.2.3")
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if changed {
		t.Fatal("expected no change for identical version")
	}
}

func TestApplyLenientSkipsFailures(t *testing.T) {
	good := writeManifest(t, "Cargo.toml", "[package]\nversion = \"1.0.0\"\n")
	bad := writeManifest(t, "setup.cfg", "version = 1.0.0\n")

	changed, err := Apply([]string{bad, good}, "1.1.0", false, logging.Discard())
	if err != nil {
		t.Fatalf("Apply returned error in lenient mode: %v", err)
	}
	if len(changed) != 1 || changed[0] != good {
		t.Fatalf("changed = %v, want only %q", changed, good)
	}
}

func TestApplyStrictAborts(t *testing.T) {
	good := writeManifest(t, "Cargo.toml", "[package]\nversion = \"1.0.0\"\n")
	bad := writeManifest(t, "setup.cfg", "version = 1.0.0\n")

	_, err := Apply([]string{bad, good}, "1.1.0", true, logging.Discard())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if got := readBack(t, good); contains(got, "1.1.0") {
		t.Fatalf("strict mode should abort before later files:\n%s", got)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
