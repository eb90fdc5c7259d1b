package reparse

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	CloudIdPlaceholder = "Unable to resolve OneDrive CID"

	ONEDRIVE_BUSINESS = "OneDrive Business"
	ONEDRIVE_PERSONAL = "OneDrive Personal"
	UNKNOWN_ACCOUNT   = "Unknown"
)

type CloudInfo struct {
	CID         FieldValue
	AccountType string
}

// A matcher recognizes one kind of account identifier in the
// printable text of a cloud payload.
type cidMatcher struct {
	account_type string
	regex        *regexp.Regexp
	extract      func(match string) (string, bool)
}

var (
	// Tried in order. Business accounts use a GUID, personal
	// accounts 16 hex digits followed by '!'.
	cid_matchers = []cidMatcher{
		{
			account_type: ONEDRIVE_BUSINESS,
			regex: regexp.MustCompile(
				`[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}`),
			extract: extractGUID,
		},
		{
			account_type: ONEDRIVE_PERSONAL,
			regex:        regexp.MustCompile(`[0-9A-F]{16}!`),
			extract: func(match string) (string, bool) {
				return strings.TrimSuffix(match, "!"), true
			},
		},
	}
)

// Only RFC 4122 GUIDs of versions 1 to 5 are account ids. The
// canonical lower case form is returned.
func extractGUID(match string) (string, bool) {
	id, err := uuid.Parse(match)
	if err != nil || id.Variant() != uuid.RFC4122 {
		return "", false
	}

	version := id.Version()
	if version < 1 || version > 5 {
		return "", false
	}
	return id.String(), true
}

// printableText drops invalid UTF-8, then keeps only printable ASCII
// with all whitespace removed.
func printableText(data []byte) string {
	text := strings.ToValidUTF8(string(data), "")

	var result strings.Builder
	for _, r := range text {
		if r > ' ' && r < 0x7f {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// DecodeCloud searches a cloud files payload for a OneDrive account
// identifier.
func DecodeCloud(data []byte) *CloudInfo {
	text := printableText(data)

	for _, matcher := range cid_matchers {
		for _, match := range matcher.regex.FindAllString(text, -1) {
			cid, ok := matcher.extract(match)
			if !ok {
				continue
			}

			return &CloudInfo{
				CID:         parsedField(cid),
				AccountType: matcher.account_type,
			}
		}
	}

	return &CloudInfo{
		CID:         failedField(CloudIdPlaceholder, PayloadError),
		AccountType: UNKNOWN_ACCOUNT,
	}
}
