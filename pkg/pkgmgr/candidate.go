package pkgmgr

import (
	"strings"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/runner"
)

// candidateParsers is the closed set of per-manager output parsers. Each is
// a pure function from command output to the upstream version string, or
// empty when the output carries no usable candidate.
var candidateParsers = map[Kind]func(string) string{
	KindApt:    parseAptCandidate,
	KindDnf:    parseDnfCandidate,
	KindPacman: parsePacmanCandidate,
	KindBrew:   parseBrewCandidate,
}

// ResolveCandidate queries the manager's metadata for the version it would
// install for the given package. The query is read-only and best-effort: a
// failed command or unparseable output yields the empty version, never an
// error, so callers treat it as "no usable candidate".
func (s Strategy) ResolveCandidate(r runner.Runner, packageName string) string {
	logger := logging.GetLogger("pkgmgr")

	args := append(append([]string{}, s.queryCmd[1:]...), packageName)
	result, err := r.Run(s.queryCmd[0], args...)
	if err != nil || !result.Success() {
		queryErr := errors.Wrapf(err, errors.ErrMetadataQuery,
			"candidate query failed for %s", packageName)
		if queryErr == nil {
			queryErr = errors.Newf(errors.ErrMetadataQuery,
				"candidate query for %s exited %d", packageName, result.ExitCode)
		}
		logger.Debug().
			Str("package", packageName).
			Str("manager", string(s.Kind)).
			Err(queryErr).
			Msg("Candidate query failed")
		return ""
	}

	candidate := candidateParsers[s.Kind](result.Stdout)
	logger.Debug().
		Str("package", packageName).
		Str("manager", string(s.Kind)).
		Str("candidate", candidate).
		Msg("Candidate resolved")
	return candidate
}

// parseAptCandidate extracts the version from `apt-cache policy` output:
//
//	fzf:
//	  Installed: (none)
//	  Candidate: 0.38.0-1+b1
func parseAptCandidate(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if value, found := strings.CutPrefix(line, "Candidate:"); found {
			candidate := strings.TrimSpace(value)
			if candidate == "" || candidate == "(none)" {
				return ""
			}
			return stripPackagingDecorations(candidate)
		}
	}
	return ""
}

// parseDnfCandidate extracts the version from `dnf info` output:
//
//	Name         : fzf
//	Version      : 0.56.3
//	Release      : 1.fc41
func parseDnfCandidate(output string) string {
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "Version" {
			continue
		}
		return stripPackagingDecorations(strings.TrimSpace(value))
	}
	return ""
}

// parsePacmanCandidate extracts the version from `pacman -Si` output:
//
//	Repository      : extra
//	Name            : fzf
//	Version         : 0.60.3-1
func parsePacmanCandidate(output string) string {
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "Version" {
			continue
		}
		return stripPackagingDecorations(strings.TrimSpace(value))
	}
	return ""
}

// parseBrewCandidate extracts the version from the `brew info` header line:
//
//	==> fzf: stable 0.60.3 (bottled), HEAD
func parseBrewCandidate(output string) string {
	firstLine, _, _ := strings.Cut(output, "\n")
	fields := strings.Fields(firstLine)
	for i, field := range fields {
		if field == "stable" && i+1 < len(fields) {
			return strings.TrimSuffix(fields[i+1], ",")
		}
	}
	return ""
}

// stripPackagingDecorations reduces a distro version to its upstream part:
// the epoch ("1:0.60.3") and the packaging revision ("0.60.3-1+b1") are
// distro bookkeeping that must not take part in minimum-version checks.
func stripPackagingDecorations(v string) string {
	if _, after, found := strings.Cut(v, ":"); found {
		v = after
	}
	if before, _, found := strings.Cut(v, "-"); found {
		v = before
	}
	return v
}
