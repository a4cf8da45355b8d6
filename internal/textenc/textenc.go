// Package textenc decodes subtitle, script and cutlist files that are
// stored in a named character encoding.
package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

const bom = "\ufeff"

// DefaultEncoding is used when no encoding is named.
const DefaultEncoding = "utf-8"

// Lookup resolves an encoding name such as "utf-8", "UTF_8", "latin-1",
// "cp1252" or "utf-8-sig". An empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	normalized := normalize(name)
	switch normalized {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-8-sig", "utf8-sig":
		return unicode.UTF8BOM, nil
	}

	if enc, err := htmlindex.Get(normalized); err == nil && enc != nil {
		return enc, nil
	}
	for _, candidate := range aliases(normalized) {
		if enc, err := htmlindex.Get(candidate); err == nil && enc != nil {
			return enc, nil
		}
	}
	if enc, err := ianaindex.IANA.Encoding(normalized); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// Known reports whether Lookup accepts name.
func Known(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Decode converts data from the named encoding to a UTF-8 string. A
// leading byte order mark is dropped.
func Decode(data []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode as %s: %w", displayName(name), err)
	}
	return strings.TrimPrefix(string(decoded), bom), nil
}

// Encode converts s to the named encoding.
func Encode(s, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", displayName(name), err)
	}
	return []byte(out), nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// spellings common in subtitle tooling that the WHATWG index lacks
func aliases(name string) []string {
	switch {
	case name == "latin-1" || name == "latin1":
		return []string{"iso-8859-1"}
	case strings.HasPrefix(name, "cp") && len(name) == 6:
		return []string{"windows-" + name[2:]}
	case strings.HasPrefix(name, "latin-"):
		return []string{"latin" + strings.TrimPrefix(name, "latin-")}
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return DefaultEncoding
	}
	return name
}
