package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/vk/torchbuildgo/internal/ctxlog"
)

// Local runs build phases as child processes on the build host.
type Local struct {
	// Dir is the working directory for every phase. Empty means the
	// current directory.
	Dir string
}

// RunPhases implements Executor. Phases run strictly in order; the first
// failure halts the remainder.
func (l *Local) RunPhases(ctx context.Context, phases []Phase) ([]PhaseResult, error) {
	logger := ctxlog.FromContext(ctx)

	var results []PhaseResult
	for _, phase := range phases {
		if len(phase.Command) == 0 {
			return results, &PhaseError{Phase: phase.Name, Err: fmt.Errorf("no command configured")}
		}

		logger.Info("Running build phase.", "phase", phase.Name, "command", phase.Command[0])
		start := time.Now()

		args := append([]string(nil), phase.Command[1:]...)
		for _, name := range phase.ExcludedTests {
			args = append(args, "--deselect="+name)
		}

		cmd := exec.CommandContext(ctx, phase.Command[0], args...)
		cmd.Dir = l.Dir
		cmd.Env = mergedEnv(phase.Env)

		var output bytes.Buffer
		cmd.Stdout = &output
		cmd.Stderr = &output

		err := cmd.Run()
		result := PhaseResult{
			Phase:    phase.Name,
			Duration: time.Since(start),
			Output:   output.String(),
		}
		results = append(results, result)

		if err != nil {
			logger.Error("Build phase failed.", "phase", phase.Name, "error", err)
			return results, &PhaseError{Phase: phase.Name, Err: err}
		}
		logger.Info("Build phase finished.", "phase", phase.Name, "duration", result.Duration)
	}

	return results, nil
}

// mergedEnv layers the phase environment over the ambient process
// environment, phase values winning. Overridden keys are removed rather
// than shadowed, since getenv implementations disagree on which
// duplicate wins.
func mergedEnv(phaseEnv map[string]string) []string {
	var env []string
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if _, overridden := phaseEnv[key]; overridden {
				continue
			}
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(phaseEnv))
	for key := range phaseEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, key+"="+phaseEnv[key])
	}
	return env
}
