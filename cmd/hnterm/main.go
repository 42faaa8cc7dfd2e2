package main

import (
	"os"
	"strings"

	"hnterm/internal/cli"
)

func rewriteDirectItemArgs(argv []string) []string {
	// Convenience: `hnterm <id>` works like `hnterm item <id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first, so the
	// first positional token is searched for, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config-dir":    true,
		"--base-url":      true,
		"--cookie":        true,
		"--backend":       true,
		"--data-dir":      true,
		"--redis-url":     true,
		"--log":           true,
		"--log-level":     true,
		"--glyphs":        true,
		"--color-profile": true,
		"--format":        true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "item")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && cli.IsItemID(argv[i+1]) {
				return insert(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if cli.IsItemID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectItemArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
