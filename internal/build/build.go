// Package build provides helpers for the build script.
package build

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DryRunFlag dry run flag
var DryRunFlag = flag.Bool("n", false, "dry run, don't execute commands")

// Environment build environment
type Environment struct {
	Commit string
	Date   string
}

func (env *Environment) String() string {
	return fmt.Sprintf("commit=%s date=%s", env.Commit, env.Date)
}

// Env gets the build environment from git, overwritten by GIT_COMMIT and GIT_DATE
func Env() *Environment {
	env := &Environment{
		Commit: os.Getenv("GIT_COMMIT"),
		Date:   os.Getenv("GIT_DATE"),
	}
	if env.Commit == "" {
		env.Commit = RunGit("rev-parse", "HEAD")
	}
	if env.Commit != "" && env.Date == "" {
		env.Date = commitDate(env.Commit)
	}
	return env
}

func commitDate(commit string) string {
	timestamp := RunGit("show", "-s", "--format=%ct", commit)
	var seconds int64
	if _, err := fmt.Sscanf(timestamp, "%d", &seconds); err != nil {
		return ""
	}
	return time.Unix(seconds, 0).UTC().Format("20060102")
}

// MustRun executes the given command and exits the host process for any error.
func MustRun(cmd *exec.Cmd) {
	fmt.Println(">>>", strings.Join(cmd.Args, " "))
	if *DryRunFlag {
		return
	}
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}

var warnedAboutGit bool

// RunGit runs a git subcommand and returns its output, empty if git is not found.
func RunGit(args ...string) string {
	cmd := exec.Command("git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if e, ok := err.(*exec.Error); ok && e.Err == exec.ErrNotFound {
			if !warnedAboutGit {
				log.Println("Warning: can't find 'git' in PATH")
				warnedAboutGit = true
			}
			return ""
		}
		log.Println(strings.Join(cmd.Args, " "), ": ", err, "\n", stderr.String())
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

// GoTool returns the command that runs a go tool from GOROOT
func GoTool(tool string, args ...string) *exec.Cmd {
	args = append([]string{tool}, args...)
	return exec.Command(filepath.Join(runtime.GOROOT(), "bin", "go"), args...) //nolint:gosec // go tool of the host
}
