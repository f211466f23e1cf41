package bump

import (
	"bytes"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// ErrVersionLineNotFound indicates a TOML manifest without a `version = "..."` line.
var ErrVersionLineNotFound = errors.Mark(errors.New("version line not found"), errors.ErrInvalidConfig)

// versionLine matches an unindented `version = "<x>"` declaration. The
// second group is the quoted value.
var versionLine = regexp.MustCompile(`(?m)^(version\s*=\s*)("[^"\r\n]*")`)

// tomlVersionKeys are the tables that declare a package version in the
// manifests we rewrite.
var tomlVersionKeys = [][]string{
	{"package", "version"},
	{"project", "version"},
	{"tool", "poetry", "version"},
}

// readVersionLine returns the value of the first version line in data.
func readVersionLine(data []byte) (string, error) {
	m := versionLine.FindSubmatch(data)
	if m == nil {
		return "", ErrVersionLineNotFound
	}
	return string(bytes.Trim(m[2], `"`)), nil
}

// replaceVersionLine rewrites the value of the first version line in data.
// Everything outside the quoted value is kept byte-for-byte.
func replaceVersionLine(data []byte, version string) ([]byte, error) {
	loc := versionLine.FindSubmatchIndex(data)
	if loc == nil {
		return nil, ErrVersionLineNotFound
	}

	start, end := loc[4], loc[5]
	out := make([]byte, 0, len(data)-(end-start)+len(version)+2)
	out = append(out, data[:start]...)
	out = append(out, '"')
	out = append(out, version...)
	out = append(out, '"')
	out = append(out, data[end:]...)

	return out, nil
}

// verifyTOML parses data and checks that every package version table it
// declares carries version. It catches a first version line that belongs to
// some other table.
func verifyTOML(data []byte, version string) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "parsing rewritten TOML")
	}

	for _, key := range tomlVersionKeys {
		got, ok := lookupString(doc, key)
		if !ok {
			continue
		}
		if got != version {
			return errors.Newf("%s is %q after rewrite, want %q", strings.Join(key, "."), got, version)
		}
	}

	return nil
}

func lookupString(doc map[string]any, key []string) (string, bool) {
	var cur any = doc
	for _, part := range key {
		table, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = table[part]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
