// Package hooks runs user-configured shell commands around the release
// lifecycle.
package hooks

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// Runner executes hook commands through the shell, in order, stopping
// at the first failure.
type Runner struct {
	Dir string
	Log zerolog.Logger
}

// Run executes each command with `sh -c`, with env merged on top of
// the current environment. Stdout and stderr pass through.
func (r *Runner) Run(commands []string, env map[string]string) error {
	for _, command := range commands {
		r.Log.Debug().Str("command", command).Msg("running hook")

		cmd := exec.Command("sh", "-c", command)
		cmd.Dir = r.Dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("hook %q: %w", command, err)
		}
	}
	return nil
}
