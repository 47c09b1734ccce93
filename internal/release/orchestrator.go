// internal/release/orchestrator.go
//
// The release pipeline. Plan() is pure with respect to its
// collaborators; Execute() performs the effectful steps in a fixed order
// where every mutation is either existence-guarded or a natural no-op,
// so a partially failed run can be re-invoked safely.

package release

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/trunkrel/trunkrel/internal/bump"
	"github.com/trunkrel/trunkrel/internal/changelog"
	"github.com/trunkrel/trunkrel/internal/commit"
	"github.com/trunkrel/trunkrel/internal/config"
	"github.com/trunkrel/trunkrel/internal/version"
)

// ReleaseCommitPrefix starts every commit the pipeline itself creates,
// so changelog regeneration can filter them back out.
const ReleaseCommitPrefix = "chore(release):"

// Orchestrator wires the planning and execution pipeline together.
// Collaborators are injected so tests can swap in fakes.
type Orchestrator struct {
	Git        SourceControl
	Host       ReleaseHost // nil disables release-host steps
	Hooks      HookRunner
	Parser     *commit.Parser
	Classifier *commit.Classifier
	Formatter  *changelog.Formatter
	Config     config.Config
	Log        zerolog.Logger

	// Now supplies changelog entry dates; injectable for tests.
	Now func() time.Time

	// Contributors optionally resolves git author names to external
	// handles for the changelog contributors section.
	Contributors func([]commit.Conventional) map[string]string

	// Notify, when set, receives a line per pipeline step. The CLI uses
	// it to feed the progress UI; nil means silent.
	Notify func(step string)
}

// Plan inspects history since the latest prefix-matching tag and decides
// the next release. With force set and HEAD sitting exactly on the
// latest tag, it returns a nominal plan that re-publishes the unchanged
// release.
func (o *Orchestrator) Plan(force bool) (*Plan, error) {
	prefix := o.Config.TagPrefix

	tag, err := o.Git.LatestTag(prefix)
	if err != nil {
		return nil, fail(KindSourceControl, "resolve latest tag", err)
	}

	from := ""
	if tag != nil {
		from = tag.SHA
	}
	raws, err := o.Git.CommitsBetween(from, "HEAD")
	if err != nil {
		return nil, fail(KindSourceControl, "list commits", err)
	}
	if len(raws) == 0 {
		if force && tag != nil {
			head, err := o.Git.HeadSHA()
			if err != nil {
				return nil, fail(KindSourceControl, "resolve HEAD", err)
			}
			if head == tag.SHA {
				return o.republishPlan(tag), nil
			}
		}
		return nil, ErrNoCommits
	}

	var commits []commit.Conventional
	for _, raw := range raws {
		cc, ok := o.Parser.Parse(raw)
		if !ok {
			o.Log.Debug().Str("sha", raw.SHA).Msg("dropping non-conventional commit")
			continue
		}
		commits = append(commits, cc)
	}

	level := o.Classifier.DetermineBump(commits)
	if level == version.BumpNone {
		return nil, ErrNoBump
	}

	base := version.Zero()
	if tag != nil {
		base = tag.Version
	}
	next := version.Apply(base, level)

	plan := &Plan{
		NextVersion: next,
		Bump:        level,
		Commits:     commits,
		TagName:     prefix + next.String(),
	}
	if tag != nil {
		plan.CurrentVersion = tag.Version
	}
	if o.Config.FloatingTags {
		plan.FloatingTagName = fmt.Sprintf("%s%d", prefix, next.Major())
	}
	return plan, nil
}

// republishPlan is the nominal plan for a forced re-release of the
// current tag: same version, no commits.
func (o *Orchestrator) republishPlan(tag *TagInfo) *Plan {
	plan := &Plan{
		CurrentVersion: tag.Version,
		NextVersion:    tag.Version,
		Commits:        nil,
		TagName:        tag.Name,
	}
	if o.Config.FloatingTags {
		plan.FloatingTagName = fmt.Sprintf("%s%d", o.Config.TagPrefix, tag.Version.Major())
	}
	return plan
}

// Entry builds the changelog entry for a plan, wiring in the repo URL,
// compare link, and resolved contributors where collaborators provide
// them.
func (o *Orchestrator) Entry(plan *Plan) changelog.Entry {
	entry := changelog.Entry{
		Version: plan.NextVersion.String(),
		Date:    o.Now().Format("2006-01-02"),
		Commits: plan.Commits,
	}
	if o.Host != nil {
		entry.RepoURL = o.Host.RepoURL()
		if plan.CurrentVersion != nil && !plan.IsRepublish() {
			prevTag := o.Config.TagPrefix + plan.CurrentVersion.String()
			entry.CompareURL = o.Host.CompareURL(prevTag, plan.TagName)
		}
	}
	if o.Contributors != nil {
		entry.Contributors = o.Contributors(plan.Commits)
	}
	return entry
}

// Execute runs the release pipeline for a previously computed plan.
// With dryRun set it only reports what it would do.
func (o *Orchestrator) Execute(plan *Plan, dryRun bool) error {
	body := o.Formatter.Format([]changelog.Entry{o.Entry(plan)})

	if dryRun {
		o.describe(os.Stderr, plan, body)
		return nil
	}

	if err := o.execute(plan, body); err != nil {
		if len(o.Config.Hooks.OnFailure) > 0 {
			if hookErr := o.Hooks.Run(o.Config.Hooks.OnFailure, o.hookEnv(plan)); hookErr != nil {
				o.Log.Warn().Err(hookErr).Msg("on_failure hook failed")
			}
		}
		return err
	}
	return nil
}

func (o *Orchestrator) execute(plan *Plan, body string) error {
	env := o.hookEnv(plan)

	if len(o.Config.Hooks.PreRelease) > 0 {
		o.step("running pre-release hooks")
		if err := o.Hooks.Run(o.Config.Hooks.PreRelease, env); err != nil {
			return fail(KindBuildCommand, "pre-release hook", err)
		}
	}

	o.step("bumping version files")
	changed, err := bump.Apply(o.Config.VersionFiles, plan.NextVersion.String(), o.Config.VersionFilesStrict, o.Log)
	if err != nil {
		return fail(KindVersionBump, "bump version files", err)
	}

	if file := o.Config.Changelog.File; file != "" {
		o.step("writing " + file)
		if err := o.mergeChangelogFile(file, body); err != nil {
			return fail(KindChangelog, "write changelog", err)
		}
		changed = append(changed, file)
	}

	if o.Config.BuildCommand != "" {
		o.step("running build command")
		if err := o.Hooks.Run([]string{o.Config.BuildCommand}, env); err != nil {
			return fail(KindBuildCommand, "build command", err)
		}
	}

	if len(changed) > 0 {
		o.step("committing release changes")
		msg := fmt.Sprintf("%s %s", ReleaseCommitPrefix, plan.TagName)
		committed, err := o.Git.StageAndCommit(changed, msg)
		if err != nil {
			return fail(KindSourceControl, "commit release changes", err)
		}
		if !committed {
			o.Log.Info().Msg("nothing to commit")
		}
	}

	exists, err := o.Git.TagExists(plan.TagName)
	if err != nil {
		return fail(KindSourceControl, "check local tag", err)
	}
	if !exists {
		o.step("creating tag " + plan.TagName)
		if err := o.Git.CreateTag(plan.TagName, body); err != nil {
			return fail(KindSourceControl, "create tag", err)
		}
	}

	o.step("pushing branch")
	if err := o.Git.Push(); err != nil {
		return fail(KindSourceControl, "push branch", err)
	}

	remote, err := o.Git.RemoteTagExists(plan.TagName)
	if err != nil {
		return fail(KindSourceControl, "check remote tag", err)
	}
	if !remote {
		o.step("pushing tag " + plan.TagName)
		if err := o.Git.PushTag(plan.TagName); err != nil {
			return fail(KindSourceControl, "push tag", err)
		}
	}

	// The floating tag's contract is "always points at the newest
	// release in this major line", so it is force-moved every run
	// rather than existence-guarded.
	if plan.FloatingTagName != "" {
		o.step("moving floating tag " + plan.FloatingTagName)
		if err := o.Git.ForceCreateTag(plan.FloatingTagName, plan.TagName); err != nil {
			return fail(KindSourceControl, "create floating tag", err)
		}
		if err := o.Git.ForcePushTag(plan.FloatingTagName); err != nil {
			return fail(KindSourceControl, "push floating tag", err)
		}
	}

	if len(o.Config.Hooks.PostTag) > 0 {
		o.step("running post-tag hooks")
		if err := o.Hooks.Run(o.Config.Hooks.PostTag, env); err != nil {
			return fail(KindBuildCommand, "post-tag hook", err)
		}
	}

	if o.Host != nil {
		exists, err := o.Host.ReleaseExists(plan.TagName)
		if err != nil {
			return fail(KindReleaseHost, "check release", err)
		}
		if exists {
			// Delete and recreate so the notes track the regenerated
			// changelog.
			o.step("replacing existing release " + plan.TagName)
			if err := o.Host.DeleteRelease(plan.TagName); err != nil {
				return fail(KindReleaseHost, "delete release", err)
			}
		}
		o.step("creating release " + plan.TagName)
		url, err := o.Host.CreateRelease(plan.TagName, plan.TagName, body, false)
		if err != nil {
			return fail(KindReleaseHost, "create release", err)
		}
		o.Log.Info().Str("url", url).Msg("release created")

		assets, err := o.resolveArtifacts()
		if err != nil {
			return fail(KindConfig, "resolve artifacts", err)
		}
		if len(assets) > 0 {
			o.step(fmt.Sprintf("uploading %d artifacts", len(assets)))
			if err := o.Host.UploadAssets(plan.TagName, assets); err != nil {
				return fail(KindReleaseHost, "upload assets", err)
			}
		}
	}

	if len(o.Config.Hooks.PostRelease) > 0 {
		o.step("running post-release hooks")
		if err := o.Hooks.Run(o.Config.Hooks.PostRelease, env); err != nil {
			return fail(KindBuildCommand, "post-release hook", err)
		}
	}

	o.Log.Info().Str("tag", plan.TagName).Msg("released")
	return nil
}

// mergeChangelogFile inserts the rendered body into the changelog file,
// creating it with a top heading when absent.
func (o *Orchestrator) mergeChangelogFile(path, body string) error {
	existing := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		existing = string(data)
	case !os.IsNotExist(err):
		return err
	}
	return os.WriteFile(path, []byte(changelog.Merge(existing, body)), 0o644)
}

// resolveArtifacts expands the configured glob patterns and
// deduplicates the matches.
func (o *Orchestrator) resolveArtifacts() ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range o.Config.Artifacts {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("artifact pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (o *Orchestrator) hookEnv(plan *Plan) map[string]string {
	return map[string]string{
		"TRUNKREL_VERSION": plan.NextVersion.String(),
		"TRUNKREL_TAG":     plan.TagName,
	}
}

func (o *Orchestrator) step(msg string) {
	if o.Notify != nil {
		o.Notify(msg)
	}
	o.Log.Info().Msg(msg)
}

// describe prints every action a real run would take, without mutating
// anything.
func (o *Orchestrator) describe(w io.Writer, plan *Plan, body string) {
	for _, h := range o.Config.Hooks.PreRelease {
		fmt.Fprintf(w, "[dry-run] would run pre-release hook: %s\n", h)
	}
	for _, f := range o.Config.VersionFiles {
		fmt.Fprintf(w, "[dry-run] would bump %s to %s\n", f, plan.NextVersion)
	}
	if o.Config.Changelog.File != "" {
		fmt.Fprintf(w, "[dry-run] would update %s\n", o.Config.Changelog.File)
	}
	if o.Config.BuildCommand != "" {
		fmt.Fprintf(w, "[dry-run] would run build command: %s\n", o.Config.BuildCommand)
	}
	fmt.Fprintf(w, "[dry-run] would create tag: %s\n", plan.TagName)
	fmt.Fprintf(w, "[dry-run] would push tag: %s\n", plan.TagName)
	if plan.FloatingTagName != "" {
		fmt.Fprintf(w, "[dry-run] would force-move floating tag: %s\n", plan.FloatingTagName)
	}
	for _, h := range o.Config.Hooks.PostTag {
		fmt.Fprintf(w, "[dry-run] would run post-tag hook: %s\n", h)
	}
	if o.Host != nil {
		fmt.Fprintf(w, "[dry-run] would create release for %s\n", plan.TagName)
		if assets, err := o.resolveArtifacts(); err == nil && len(assets) > 0 {
			for _, a := range assets {
				fmt.Fprintf(w, "[dry-run] would upload artifact: %s\n", a)
			}
		}
	}
	for _, h := range o.Config.Hooks.PostRelease {
		fmt.Fprintf(w, "[dry-run] would run post-release hook: %s\n", h)
	}
	fmt.Fprintf(w, "[dry-run] changelog:\n%s\n", body)
}
