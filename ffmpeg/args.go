package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// SplitExtraArgs securely splits the configured extra ffmpeg arguments into
// a slice. It prevents shell injection by not using a shell.
func SplitExtraArgs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	args, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid extra args syntax: %w", err)
	}
	if err := validateArgs(args); err != nil {
		return nil, err
	}
	return args, nil
}

// validateArgs checks the split arguments for potential security risks.
// exec.Command never invokes a shell, but operator config should still not
// carry shell metacharacters around.
func validateArgs(args []string) error {
	for _, arg := range args {
		if strings.ContainsAny(arg, "|&;`$()<>") {
			return fmt.Errorf("disallowed character found in argument: %s", arg)
		}
	}
	return nil
}
