package provision

import (
	"strings"
)

// versionParsers is the closed set of per-tool version-output parsers. Each
// is a pure function from `tool --version` output to a bare version string.
// Tools print version information in different shapes, so the brittle text
// splitting is isolated here, one parser per known tool.
var versionParsers = map[string]func(string) string{
	"fzf":      parseFzfVersion,
	"nvim":     parseNvimVersion,
	"starship": parseStarshipVersion,
}

// ParseToolVersion extracts a version from a tool's --version output using
// the tool's own parser when one is registered. Unrecognized tools use the
// generic rule: last whitespace-delimited token of the first line, with a
// leading "v" stripped.
func ParseToolVersion(command, output string) string {
	if parse, ok := versionParsers[command]; ok {
		return parse(output)
	}
	return parseGenericVersion(output)
}

// parseFzfVersion handles "0.60.3 (d6f2faf)".
func parseFzfVersion(output string) string {
	fields := strings.Fields(firstLine(output))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseNvimVersion handles a first line of "NVIM v0.9.5".
func parseNvimVersion(output string) string {
	fields := strings.Fields(firstLine(output))
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "v")
}

// parseStarshipVersion handles "starship 1.17.1".
func parseStarshipVersion(output string) string {
	fields := strings.Fields(firstLine(output))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func parseGenericVersion(output string) string {
	fields := strings.Fields(firstLine(output))
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "v")
}

func firstLine(output string) string {
	line, _, _ := strings.Cut(output, "\n")
	return strings.TrimSpace(line)
}
