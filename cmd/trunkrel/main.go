// cmd/trunkrel/main.go
//
// Entry point for the trunkrel CLI.
//
// Flow:
// 1. Pick the subcommand and parse its flags
// 2. Load config, plugin rules, and the git repository
// 3. Hand off to the release engine and map its errors to exit codes

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trunkrel/trunkrel/internal/changelog"
	"github.com/trunkrel/trunkrel/internal/commit"
	"github.com/trunkrel/trunkrel/internal/config"
	"github.com/trunkrel/trunkrel/internal/gitcli"
	"github.com/trunkrel/trunkrel/internal/github"
	"github.com/trunkrel/trunkrel/internal/hooks"
	"github.com/trunkrel/trunkrel/internal/logging"
	"github.com/trunkrel/trunkrel/internal/release"
	"github.com/trunkrel/trunkrel/internal/tui"
	"github.com/trunkrel/trunkrel/plugins"
)

// Exit codes. NoCommits and NoBump are distinct so CI pipelines can
// treat "nothing to release" as a skip rather than a failure.
const (
	exitOK        = 0
	exitFatal     = 1
	exitNoCommits = 10
	exitNoBump    = 11
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return exitFatal
	}
	switch args[0] {
	case "release":
		return cmdRelease(args[1:])
	case "plan":
		return cmdPlan(args[1:])
	case "changelog":
		return cmdChangelog(args[1:])
	case "version":
		return cmdVersion(args[1:])
	case "config":
		return cmdConfig(args[1:])
	case "init":
		return cmdInit(args[1:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage(os.Stderr)
		return exitFatal
	}
}

func usage(w *os.File) {
	fmt.Fprint(w, `trunkrel - trunk-based release automation

Usage:
  trunkrel release   [--dry-run] [--force] [--yes] [--verbose]
  trunkrel plan      [--json] [--verbose]
  trunkrel changelog [--write] [--regenerate] [--verbose]
  trunkrel version   [--short]
  trunkrel config    [--resolved]
  trunkrel init      [--force]

A GitHub token is read from GITHUB_TOKEN or GH_TOKEN; without one,
release-host steps are skipped. Set TRUNKREL_LOG_FILE to also append
release logs to a file.
`)
}

// app bundles everything a subcommand needs after setup.
type app struct {
	cfg  config.Config
	repo *gitcli.Repository
	host *github.Client
	orch *release.Orchestrator
	log  zerolog.Logger
}

// newApp loads configuration and plugin rules, opens the repository,
// and wires the orchestrator. The GitHub client is only built when a
// token is available; without it the engine simply skips host steps.
func newApp(log zerolog.Logger) (*app, error) {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return nil, err
	}

	extra, err := plugins.LoadRuleDir(cfg.PluginDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.MergeRules(extra); err != nil {
		return nil, err
	}

	parser, err := commit.NewParser(cfg.CommitPattern)
	if err != nil {
		return nil, fmt.Errorf("config: commit_pattern: %w", err)
	}
	classifier, err := commit.NewClassifier(cfg.Types)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	formatter := changelog.NewFormatter(classifier, cfg.BreakingSection, cfg.MiscSection)

	repo, err := gitcli.Open(".")
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:  cfg,
		repo: repo,
		log:  log,
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		log.Warn().Msg("no GITHUB_TOKEN or GH_TOKEN set; release-host steps will be skipped")
	} else if origin, err := repo.OriginURL(); err != nil {
		log.Warn().Err(err).Msg("cannot resolve origin remote; release-host steps will be skipped")
	} else if remote, err := gitcli.ParseRemoteURL(origin); err != nil {
		log.Warn().Err(err).Str("url", origin).Msg("unrecognized origin remote; release-host steps will be skipped")
	} else {
		a.host = github.New(remote.Owner, remote.Repo, remote.Host, token)
		a.repo = repo.WithHTTPAuth(remote.Host, token)
	}

	a.orch = &release.Orchestrator{
		Git:        a.repo,
		Hooks:      &hooks.Runner{Log: log},
		Parser:     parser,
		Classifier: classifier,
		Formatter:  formatter,
		Config:     cfg,
		Log:        log,
		Now:        time.Now,
	}
	if a.host != nil {
		a.orch.Host = a.host
		a.orch.Contributors = a.host.ResolveContributors
	}
	return a, nil
}

// entryBody renders the single changelog entry for a plan.
func (a *app) entryBody(plan *release.Plan) string {
	return a.orch.Formatter.Format([]changelog.Entry{a.orch.Entry(plan)})
}

// checkBranch enforces the configured release branches.
func (a *app) checkBranch() error {
	branch, err := a.repo.CurrentBranch()
	if err != nil {
		return err
	}
	for _, allowed := range a.cfg.Branches {
		if branch == allowed {
			return nil
		}
	}
	return fmt.Errorf("branch %q is not a release branch (allowed: %s)", branch, strings.Join(a.cfg.Branches, ", "))
}

// report maps an error to the process exit code, logging it on the way.
func report(log zerolog.Logger, err error) int {
	switch {
	case errors.Is(err, release.ErrNoCommits):
		log.Info().Msg(err.Error())
		return exitNoCommits
	case errors.Is(err, release.ErrNoBump):
		log.Info().Msg(err.Error())
		return exitNoBump
	}
	var relErr *release.Error
	if errors.As(err, &relErr) {
		log.Error().Str("kind", string(relErr.Kind)).Str("step", relErr.Step).Err(relErr.Err).Msg("release failed")
		return exitFatal
	}
	log.Error().Err(err).Msg("failed")
	return exitFatal
}

func cmdRelease(args []string) int {
	fs := flag.NewFlagSet("release", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "report actions without performing them")
	force := fs.Bool("force", false, "allow re-releasing the current version when HEAD is already tagged")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.Parse(args)

	log := logging.New(*verbose)
	if path := os.Getenv("TRUNKREL_LOG_FILE"); path != "" {
		fileLog, closeLog, err := logging.NewWithFile(*verbose, path)
		if err != nil {
			return report(log, err)
		}
		defer closeLog()
		log = fileLog
	}
	a, err := newApp(log)
	if err != nil {
		return report(log, err)
	}
	if err := a.checkBranch(); err != nil {
		return report(log, err)
	}

	plan, err := a.orch.Plan(*force)
	if err != nil {
		return report(log, err)
	}

	if *dryRun {
		if err := a.orch.Execute(plan, true); err != nil {
			return report(log, err)
		}
		return exitOK
	}

	if !*yes && interactive(os.Stdin, os.Stdout) {
		fmt.Println(tui.RenderPlan(plan, a.entryBody(plan)))
		ok, err := tui.Confirm(fmt.Sprintf("Create release %s?", plan.TagName))
		if err != nil {
			return report(log, err)
		}
		if !ok {
			log.Info().Msg("release cancelled")
			return exitOK
		}
		err = tui.RunWithProgress(func(notify func(string)) error {
			a.orch.Notify = notify
			a.orch.Log = logging.Discard()
			return a.orch.Execute(plan, false)
		})
		if err != nil {
			return report(log, err)
		}
		return exitOK
	}

	if err := a.orch.Execute(plan, false); err != nil {
		return report(log, err)
	}
	return exitOK
}

func cmdPlan(args []string) int {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.Parse(args)

	log := logging.New(*verbose)
	if *asJSON {
		// Keep stderr clean for shells capturing both streams.
		log = logging.Discard()
	}
	a, err := newApp(log)
	if err != nil {
		return report(log, err)
	}

	plan, err := a.orch.Plan(false)
	if err != nil {
		return report(log, err)
	}
	body := a.entryBody(plan)

	if *asJSON {
		out := struct {
			*release.Plan
			Changelog string `json:"changelog"`
		}{plan, body}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return report(log, err)
		}
		fmt.Println(string(encoded))
		return exitOK
	}

	fmt.Println(tui.RenderPlan(plan, body))
	return exitOK
}

func cmdChangelog(args []string) int {
	fs := flag.NewFlagSet("changelog", flag.ExitOnError)
	write := fs.Bool("write", false, "update the changelog file instead of printing")
	regenerate := fs.Bool("regenerate", false, "rebuild the changelog from all release tags")
	verbose := fs.Bool("verbose", false, "debug logging")
	fs.Parse(args)

	log := logging.New(*verbose)
	a, err := newApp(log)
	if err != nil {
		return report(log, err)
	}

	file := a.cfg.Changelog.File
	if file == "" {
		file = "CHANGELOG.md"
	}

	if *regenerate {
		body, err := a.regenerateChangelog()
		if err != nil {
			return report(log, err)
		}
		if *write {
			if err := os.WriteFile(file, []byte(changelog.Regenerated(body)), 0o644); err != nil {
				return report(log, err)
			}
			log.Info().Str("file", file).Msg("changelog regenerated")
			return exitOK
		}
		fmt.Println(body)
		return exitOK
	}

	plan, err := a.orch.Plan(false)
	if err != nil {
		return report(log, err)
	}
	body := a.entryBody(plan)

	if *write {
		existing := ""
		if data, err := os.ReadFile(file); err == nil {
			existing = string(data)
		}
		if err := os.WriteFile(file, []byte(changelog.Merge(existing, body)), 0o644); err != nil {
			return report(log, err)
		}
		log.Info().Str("file", file).Msg("changelog updated")
		return exitOK
	}
	fmt.Println(body)
	return exitOK
}

// regenerateChangelog rebuilds entries for every prefix tag, newest
// first, leaving out the commits the pipeline itself created.
func (a *app) regenerateChangelog() (string, error) {
	tags, err := a.repo.AllTags(a.cfg.TagPrefix)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("no %q-prefixed tags found", a.cfg.TagPrefix)
	}

	entries := make([]changelog.Entry, 0, len(tags))
	for i, tag := range tags {
		from := ""
		if i > 0 {
			from = tags[i-1].SHA
		}
		raws, err := a.repo.CommitsBetween(from, tag.SHA)
		if err != nil {
			return "", err
		}
		var commits []commit.Conventional
		for _, raw := range raws {
			if strings.HasPrefix(raw.Message, release.ReleaseCommitPrefix) {
				continue
			}
			if cc, ok := a.orch.Parser.Parse(raw); ok {
				commits = append(commits, cc)
			}
		}
		date, err := a.repo.TagDate(tag.Name)
		if err != nil {
			return "", err
		}
		entry := changelog.Entry{
			Version: tag.Version.String(),
			Date:    date,
			Commits: commits,
		}
		if a.host != nil {
			entry.RepoURL = a.host.RepoURL()
			if i > 0 {
				entry.CompareURL = a.host.CompareURL(tags[i-1].Name, tag.Name)
			}
			entry.Contributors = a.host.ResolveContributors(commits)
		}
		entries = append(entries, entry)
	}

	// Newest release at the top.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return a.orch.Formatter.Format(entries), nil
}

func cmdVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	short := fs.Bool("short", false, "print only the next version")
	fs.Parse(args)

	log := logging.New(false)
	a, err := newApp(log)
	if err != nil {
		return report(log, err)
	}

	plan, err := a.orch.Plan(false)
	if err != nil {
		return report(log, err)
	}
	if *short {
		fmt.Println(plan.NextVersion.String())
		return exitOK
	}
	current := "none"
	if plan.CurrentVersion != nil {
		current = plan.CurrentVersion.String()
	}
	fmt.Printf("%s -> %s (%s)\n", current, plan.NextVersion, plan.Bump)
	return exitOK
}

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	resolved := fs.Bool("resolved", false, "print the configuration with defaults applied")
	fs.Parse(args)

	log := logging.New(false)
	if *resolved {
		cfg, err := config.Load(config.DefaultFile)
		if err != nil {
			return report(log, err)
		}
		out, err := cfg.Marshal()
		if err != nil {
			return report(log, err)
		}
		os.Stdout.Write(out)
		return exitOK
	}

	data, err := os.ReadFile(config.DefaultFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Msgf("no %s found; run `trunkrel init` or use --resolved", config.DefaultFile)
			return exitFatal
		}
		return report(log, err)
	}
	os.Stdout.Write(data)
	return exitOK
}

func cmdInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing config file")
	fs.Parse(args)

	log := logging.New(false)
	if !*force {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			log.Error().Msgf("%s already exists (use --force to overwrite)", config.DefaultFile)
			return exitFatal
		}
	}
	out, err := config.Default().Marshal()
	if err != nil {
		return report(log, err)
	}
	if err := os.WriteFile(config.DefaultFile, out, 0o644); err != nil {
		return report(log, err)
	}
	log.Info().Str("file", config.DefaultFile).Msg("wrote default configuration")
	return exitOK
}

// interactive reports whether the confirm prompt can actually run: it
// renders on stdout but reads keystrokes from stdin, so both must be
// terminals.
func interactive(stdin, stdout *os.File) bool {
	return isTTY(stdin) && isTTY(stdout)
}

// isTTY reports whether f is attached to a terminal.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
