package script

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mgpai22/submod/internal/textenc"
	"github.com/tidwall/gjson"
)

type presence int

const (
	required presence = iota
	optional
	// at least one key of the group must be present
	anyOf
)

type checkFunc func(key string, value gjson.Result) error

type field struct {
	presence presence
	check    checkFunc
}

type schema map[string]field

var (
	shaRegex        = regexp.MustCompile(`^[0-9a-f]{64}$`)
	idNumberRegex   = regexp.MustCompile(`^\d+$`)
	timeRegex       = regexp.MustCompile(`^\d{2}:[0-5]\d:[0-5]\d\.\d{3}$`)
	signedTimeRegex = regexp.MustCompile(`^[+-]\d{2}:[0-5]\d:[0-5]\d\.\d{3}$`)
	timingsForRegex = regexp.MustCompile(`^(original|uncut)$`)
)

var (
	subtitleSchema = schema{
		"filename": {required, anyString},
		"sha256":   {required, pattern(shaRegex)},
		"encoding": {optional, encodingName},
	}
	moveSchema = schema{
		"id": {required, checkID},
		"by": {required, pattern(signedTimeRegex)},
	}
	updateSchema = schema{
		"id":    {required, checkID},
		"start": {anyOf, pattern(timeRegex)},
		"end":   {anyOf, pattern(timeRegex)},
		"text":  {anyOf, anyString},
	}
	removeSchema = schema{
		"id": {required, checkID},
	}
	addSchema = schema{
		"start": {required, pattern(timeRegex)},
		"end":   {required, pattern(timeRegex)},
		"text":  {required, anyString},
	}
	scriptSchema = schema{
		"subtitle":    {required, object(subtitleSchema)},
		"timings-for": {optional, pattern(timingsForRegex)},
		"move":        {required, list(moveSchema)},
		"update":      {required, list(updateSchema)},
		"remove":      {required, list(removeSchema)},
		"add":         {required, list(addSchema)},
	}
)

// Validate checks the structure of a raw script document. The first
// problem found is returned as a *SchemaError.
func Validate(data []byte) error {
	if !gjson.ValidBytes(data) {
		return &SchemaError{Key: "$", Reason: "not valid JSON"}
	}
	return scriptSchema.validate("", gjson.ParseBytes(data))
}

func (s schema) validate(path string, value gjson.Result) error {
	if !value.IsObject() {
		return &SchemaError{Key: displayPath(path), Value: value.Raw, Reason: "expected object"}
	}

	seen := make(map[string]bool)
	var err error
	value.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		f, ok := s[key]
		if !ok {
			err = &SchemaError{Key: join(path, key), Reason: "unknown key"}
			return false
		}
		seen[key] = true
		if checkErr := f.check(join(path, key), v); checkErr != nil {
			err = checkErr
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	var group []string
	groupSeen := false
	for _, key := range s.keys() {
		switch s[key].presence {
		case required:
			if !seen[key] {
				return &SchemaError{Key: join(path, key), Reason: "missing"}
			}
		case anyOf:
			group = append(group, key)
			groupSeen = groupSeen || seen[key]
		}
	}
	if len(group) > 0 && !groupSeen {
		return &SchemaError{
			Key:    displayPath(path),
			Reason: "missing one of " + strings.Join(group, ", "),
		}
	}
	return nil
}

func (s schema) keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func object(s schema) checkFunc {
	return func(key string, value gjson.Result) error {
		return s.validate(key, value)
	}
}

func list(item schema) checkFunc {
	return func(key string, value gjson.Result) error {
		if !value.IsArray() {
			return &SchemaError{Key: key, Value: value.Raw, Reason: "expected array"}
		}
		var err error
		i := 0
		value.ForEach(func(_, v gjson.Result) bool {
			err = item.validate(fmt.Sprintf("%s[%d]", key, i), v)
			i++
			return err == nil
		})
		return err
	}
}

func anyString(key string, value gjson.Result) error {
	if value.Type != gjson.String {
		return &SchemaError{Key: key, Value: value.Raw, Reason: "expected string"}
	}
	return nil
}

func pattern(re *regexp.Regexp) checkFunc {
	return func(key string, value gjson.Result) error {
		if err := anyString(key, value); err != nil {
			return err
		}
		if !re.MatchString(value.Str) {
			return &SchemaError{Key: key, Value: value.Str, Reason: "invalid value"}
		}
		return nil
	}
}

func encodingName(key string, value gjson.Result) error {
	if err := anyString(key, value); err != nil {
		return err
	}
	if !textenc.Known(value.Str) {
		return &SchemaError{Key: key, Value: value.Str, Reason: "unknown encoding"}
	}
	return nil
}

// ids are positive integers or "lo-hi" strings with lo < hi
func checkID(key string, value gjson.Result) error {
	switch value.Type {
	case gjson.Number:
		if !idNumberRegex.MatchString(value.Raw) {
			return &SchemaError{Key: key, Value: value.Raw, Reason: "invalid id"}
		}
		id, err := strconv.Atoi(value.Raw)
		if err != nil || id < 1 {
			return &SchemaError{Key: key, Value: value.Raw, Reason: "invalid id"}
		}
		return nil
	case gjson.String:
		m := idRangeRegex.FindStringSubmatch(value.Str)
		if m == nil {
			return &SchemaError{Key: key, Value: value.Str, Reason: "invalid id"}
		}
		lo, loErr := strconv.Atoi(m[1])
		hi, hiErr := strconv.Atoi(m[2])
		if loErr != nil || hiErr != nil || lo < 1 || lo >= hi {
			return &SchemaError{Key: key, Value: value.Str, Reason: "invalid id range"}
		}
		return nil
	default:
		return &SchemaError{Key: key, Value: value.Raw, Reason: "invalid id"}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
