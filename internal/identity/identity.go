// Package identity derives stable record identifiers from record page URLs.
// The ID is the merge key: it comes from the page address, never from page
// content, so repeated captures of the same record always reconcile.
package identity

import (
	"regexp"

	"github.com/sells-group/capture-cli/internal/model"
)

// Lightning record URLs look like
//
//	https://org.lightning.force.com/lightning/r/Opportunity/006ABC.../view
//
// with the 15-18 character alphanumeric ID after the object's API name.
// Classic URLs carry the bare ID as the path, so the object type has to come
// from the ID itself: every Salesforce ID starts with a three-character key
// prefix identifying the object.
var (
	patterns        = map[model.ObjectType]*regexp.Regexp{}
	classicPatterns = map[model.ObjectType]*regexp.Regexp{}
)

var keyPrefixes = map[model.ObjectType]string{
	model.ObjectAccount:     "001",
	model.ObjectContact:     "003",
	model.ObjectOpportunity: "006",
	model.ObjectLead:        "00Q",
	model.ObjectTask:        "00T",
}

func init() {
	for _, t := range model.ObjectTypes {
		patterns[t] = regexp.MustCompile(
			`/` + t.APIName() + `/([a-zA-Z0-9]{15,18})(?:[/?#]|$)`,
		)
		classicPatterns[t] = regexp.MustCompile(
			`/(` + keyPrefixes[t] + `[a-zA-Z0-9]{12,15})(?:[/?#]|$)`,
		)
	}
}

// FromURL extracts the record ID for the given object type from a page URL.
// Returns false when the URL does not match the object's address shape;
// callers treat that as fatal for the capture attempt.
func FromURL(rawURL string, t model.ObjectType) (string, bool) {
	re, ok := patterns[t]
	if !ok {
		return "", false
	}
	if m := re.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	if m := classicPatterns[t].FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	return "", false
}

// Detect tries every object type's address pattern against the URL and
// returns the first match. Used by the executor to decide which extractor
// a RUN_EXTRACTION command should run.
func Detect(rawURL string) (model.ObjectType, string, bool) {
	for _, t := range model.ObjectTypes {
		if id, ok := FromURL(rawURL, t); ok {
			return t, id, true
		}
	}
	return "", "", false
}
