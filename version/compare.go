package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

var errMalformed = errors.New("malformed version")

// semver is a major.minor.patch triple. A pre-release sorts below its release.
type semver struct {
	parts      [3]int
	prerelease string
}

func parseSemver(s string) (semver, error) {
	var v semver

	core, pre, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "v"), "-")
	fields := strings.Split(core, ".")
	if len(fields) != len(v.parts) {
		return v, fmt.Errorf("%w: %q", errMalformed, s)
	}

	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return v, fmt.Errorf("%w: %q", errMalformed, s)
		}
		v.parts[i] = n
	}

	v.prerelease = pre
	return v, nil
}

func (v semver) compare(u semver) int {
	if c := slices.Compare(v.parts[:], u.parts[:]); c != 0 {
		return c
	}

	switch {
	case v.prerelease == u.prerelease:
		return 0
	case v.prerelease == "":
		return 1
	case u.prerelease == "":
		return -1
	default:
		return strings.Compare(v.prerelease, u.prerelease)
	}
}

// Compare returns -1, 0 or 1 as release a is older than, equal to or newer than b.
func Compare(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, err
	}

	bv, err := parseSemver(b)
	if err != nil {
		return 0, err
	}

	return av.compare(bv), nil
}
