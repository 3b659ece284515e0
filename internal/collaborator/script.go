package collaborator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ScriptRunner executes queries as shell scripts from a fixed directory.
// The query name maps to <dir>/<name>.sh and arguments are passed as
// environment variables prefixed with QUERY_ARG_.
type ScriptRunner struct {
	dir string
}

// NewScriptRunner creates a runner backed by scripts in dir.
func NewScriptRunner(dir string) *ScriptRunner {
	return &ScriptRunner{dir: dir}
}

// RunQuery implements Runner. Query names must be simple identifiers;
// anything resembling a path is rejected before touching the filesystem.
func (r *ScriptRunner) RunQuery(ctx context.Context, name string, args map[string]string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid query name %q", name)
	}

	script := filepath.Join(r.dir, name+".sh")
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = append(cmd.Environ(), argsToEnv(args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("query %q failed: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("query %q failed: %w", name, err)
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return "", fmt.Errorf("query %q produced no output", name)
	}
	return output, nil
}

func argsToEnv(args map[string]string) []string {
	if len(args) == 0 {
		return nil
	}
	env := make([]string, 0, len(args))
	for key, value := range args {
		env = append(env, "QUERY_ARG_"+strings.ToUpper(key)+"="+value)
	}
	sort.Strings(env)
	return env
}
