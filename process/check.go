package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CheckInstalled runs "<exe> --version" and returns the first line it prints.
func CheckInstalled(ctx context.Context, exe string) (string, error) {
	cmd := exec.CommandContext(ctx, exe, "--version")
	cmd.SysProcAttr = sysProcAttr()

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSpawn, exe, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", nil
}
