// Package naming derives every naming convention the generator needs from a
// single schema identifier such as "EntUserSchema".
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
)

// SchemaSuffix is the suffix every schema identifier must carry.
const SchemaSuffix = "Schema"

var (
	identPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

	// Applied in this order: the first pass splits "ABCWord" boundaries, the
	// second splits "wordABC" and "word9A" boundaries.
	snakeFirstPass  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeSecondPass = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// UsageError reports a malformed or missing schema identifier. It is returned
// before anything is read or written.
type UsageError struct {
	Input  string
	Reason string
}

func (e *UsageError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("usage: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema name %q: %s", e.Input, e.Reason)
}

// Names holds the derived names for one entity.
type Names struct {
	Schema      string // EntUserSchema
	Entity      string // EntUser
	EntitySnake string // ent_user
	SchemaSnake string // ent_user_schema
	Plural      string // EntUsers
	TypeConst   string // EntityTypeEntUser
}

// Derive validates schemaName and derives the entity names from it.
func Derive(schemaName string) (Names, error) {
	if schemaName == "" {
		return Names{}, &UsageError{Reason: "a schema name is required (e.g. EntUserSchema)"}
	}
	if !strings.HasSuffix(schemaName, SchemaSuffix) {
		return Names{}, &UsageError{Input: schemaName, Reason: "schema name must end with " + SchemaSuffix}
	}
	if !identPattern.MatchString(schemaName) {
		return Names{}, &UsageError{Input: schemaName, Reason: "must start with an uppercase letter and contain only letters and digits"}
	}

	entity := strings.TrimSuffix(schemaName, SchemaSuffix)
	if entity == "" {
		return Names{}, &UsageError{Input: schemaName, Reason: "entity name before " + SchemaSuffix + " is empty"}
	}

	return Names{
		Schema:      schemaName,
		Entity:      entity,
		EntitySnake: SnakeCase(entity),
		SchemaSnake: SnakeCase(schemaName),
		Plural:      plural(entity),
		TypeConst:   "EntityType" + entity,
	}, nil
}

// SnakeCase converts a compound identifier to lower snake case.
// Examples: EntUser → ent_user, HTTPServer → http_server, EntUserV2 → ent_user_v2
func SnakeCase(s string) string {
	s = snakeFirstPass.ReplaceAllString(s, "${1}_${2}")
	s = snakeSecondPass.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// plural returns the accessor name for the entity. Uncountable names would
// collide with the record type, so they get a "Records" suffix instead.
func plural(entity string) string {
	p := inflect.Pluralize(entity)
	if p == entity || p == "" || !identPattern.MatchString(p) {
		return entity + "Records"
	}
	return p
}
