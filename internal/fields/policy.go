package fields

import "strings"

// template is the set of fields appended for entities whose name contains
// keyword.
type template struct {
	keyword string
	fields  []Field
}

// Checked in order; the first keyword contained in the entity name wins, so
// "EntUserPost" gets the User fields.
var templates = []template{
	{
		keyword: "User",
		fields: []Field{
			{Name: "username", Type: String, Required: true},
			{Name: "email", Type: String, Required: true},
			{Name: "full_name", Type: String, Required: false},
		},
	},
	{
		keyword: "Post",
		fields: []Field{
			{Name: "author_id", Type: I64, Required: true},
			{Name: "content", Type: String, Required: true},
			{Name: "like_count", Type: I32, Required: true},
		},
	},
	{
		keyword: "Event",
		fields: []Field{
			{Name: "title", Type: String, Required: true},
			{Name: "description", Type: String, Required: false},
			{Name: "start_time", Type: I64, Required: true},
		},
	},
}

var generic = []Field{
	{Name: "name", Type: String, Required: true},
	{Name: "description", Type: String, Required: false},
}

// Defaults returns the field set used when the caller supplies none.
func Defaults(entity string) Set {
	return Timestamps().Extend(match(entity)...)
}

// Keyword returns the keyword whose template Defaults picks for entity, or ""
// for the generic fallback.
func Keyword(entity string) string {
	for _, t := range templates {
		if strings.Contains(entity, t.keyword) {
			return t.keyword
		}
	}
	return ""
}

func match(entity string) []Field {
	for _, t := range templates {
		if strings.Contains(entity, t.keyword) {
			return t.fields
		}
	}
	return generic
}

// Resolve returns the caller's fields placed after the timestamps, or the
// defaults for entity when custom is empty.
func Resolve(entity string, custom []Field) (Set, error) {
	var set Set
	if len(custom) == 0 {
		set = Defaults(entity)
	} else {
		set = Timestamps().Extend(custom...)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
