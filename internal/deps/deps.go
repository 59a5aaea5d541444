// Package deps checks the external tools reeldex shells out to.
package deps

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"reeldex/internal/config"
)

// Requirement describes one external tool a workflow invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a tool.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Version     string
	Detail      string
}

// MediaTools lists the tools scanning and deep verification depend on,
// resolved from the effective configuration.
func MediaTools(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ffprobe", Command: cfg.FFprobeBinary(), Description: "Stream inspection during scans"},
		{Name: "ffmpeg", Command: cfg.FFmpegBinary(), Description: "Decode pass during deep verification"},
	}
}

// Check resolves each requirement on PATH and reports availability.
func Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: req.Description,
		}
		if command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		status.Version = toolVersion(ctx, resolved)
		results = append(results, status)
	}
	return results
}

// toolVersion returns the first line of `tool -version`, or empty if the
// tool refuses the flag. ffmpeg and ffprobe both honour it.
func toolVersion(ctx context.Context, binary string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := bytes.Cut(output, []byte("\n"))
	return strings.TrimSpace(string(line))
}
