package docs

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// DateLayout is the date format written into documentation
const DateLayout = "2006-01-02"

var (
	// **📅 v1.2.3 - <summary> (<date>)**
	versionLine = regexp.MustCompile(`(\*\*📅 (v[0-9][0-9A-Za-z.+-]*) - )(.*?)(\(.*?\)\*\*)`)

	lastUpdated = regexp.MustCompile(`<!-- Last Updated: .*? -->`)
)

// ChangeSummary describes the affected areas for the README version line
func ChangeSummary(areas []string) string {
	if len(areas) == 0 {
		return "Documentation and maintenance updates"
	}
	return "Updated: " + strings.Join(areas, ", ")
}

// RewriteVersionLine replaces the summary and date of the first README
// version line carrying a full vMAJOR.MINOR.PATCH release version. It
// reports whether a line was found.
func RewriteVersionLine(content, summary, date string) (string, bool) {
	for _, m := range versionLine.FindAllStringSubmatchIndex(content, -1) {
		if !isReleaseVersion(content[m[4]:m[5]]) {
			continue
		}
		prefix := content[m[2]:m[3]]
		return content[:m[0]] + prefix + summary + " (" + date + ")**" + content[m[1]:], true
	}
	return content, false
}

// isReleaseVersion reports whether v is a complete semantic version with no
// prerelease or build suffix. semver accepts shorthands like v1.2, which
// Canonical expands.
func isReleaseVersion(v string) bool {
	return semver.IsValid(v) && semver.Canonical(v) == v && semver.Prerelease(v) == ""
}

// StampLastUpdated replaces the first "Last Updated" marker with date, or
// appends a footer holding one.
func StampLastUpdated(content, date string) string {
	marker := "<!-- Last Updated: " + date + " -->"
	if loc := lastUpdated.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + marker + content[loc[1]:]
	}
	return strings.TrimRight(content, " \t\r\n") + "\n\n---\n" + marker + "\n"
}
