package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"arbor/internal/cli"
)

func isScriptPath(s string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(s))) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// rewritePlayShortcutArgs makes `arbor <script.yaml>` work like
// `arbor play <script.yaml>`. Cobra treats the first non-flag token as a
// subcommand, so argv is rewritten before parsing.
func rewritePlayShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--config":  true,
		"--catalog": true,
		"--format":  true,
		"--changes": true,
	}
	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "play")
		return append(out, argv[i:]...)
	}
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			// The subcommand must come before "--" for cobra to find it.
			if i+1 < len(argv) && isScriptPath(argv[i+1]) {
				return insertAt(i)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isScriptPath(a) {
			return insertAt(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewritePlayShortcutArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
