// Package contacts turns raw spreadsheet rows into canonical contacts.
//
// The input is a 2-D grid of already-decoded cell strings with fixed column
// semantics: full name (0), profile link or identifier (1) and an optional
// gender column (2). Decoding spreadsheet bytes into this grid is the
// caller's concern.
package contacts

import (
	"regexp"
	"strings"

	"github.com/vkblast/vkblast/core/model"
)

// FailReasonNoID marks contacts whose recipient ID could not be extracted.
const FailReasonNoID = "ID extraction failed"

// headerKeywords flag row 0 as a header row when any whitespace-separated
// token of a cell equals one of them. Token equality keeps data values like
// a vk.com profile link or a name containing a keyword from being mistaken
// for column labels. Both the Russian deployment vocabulary and the English
// equivalents are accepted.
var headerKeywords = []string{
	"имя", "фамилия", "ссылка", "пол",
	"name", "surname", "link", "gender", "vk",
}

var (
	// profileRe matches a VK profile link carrying an explicit numeric ID.
	profileRe = regexp.MustCompile(`(?i)vk\.com/id(\d+)`)
	// digitsRe is the fallback: the first run of digits anywhere.
	digitsRe = regexp.MustCompile(`\d+`)
)

// Normalize converts spreadsheet rows into an ordered contact list.
// Row order is preserved and no deduplication is performed.
func Normalize(rows [][]string) []*model.Contact {
	if len(rows) == 0 {
		return nil
	}
	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}

	var out []*model.Contact
	for _, row := range rows[start:] {
		if populated(row) < 2 {
			continue
		}
		fullName := strings.TrimSpace(cell(row, 0))
		rawSource := strings.TrimSpace(cell(row, 1))
		if fullName == "" && rawSource == "" {
			continue
		}

		c := model.NewContact(fullName, rawSource)
		c.Gender = ParseGender(cell(row, 2))
		if id := ExtractRecipientID(rawSource); id != "" {
			c.RecipientID = id
		} else {
			c.State = model.StateFailed
			c.FailReason = FailReasonNoID
		}
		out = append(out, c)
	}
	return out
}

// ParseGender maps a cell value onto a Gender. Matching is case-insensitive
// against a fixed token set; anything else, including the empty string, is
// GenderUnknown.
func ParseGender(s string) model.Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "м", "муж", "m", "male":
		return model.GenderMale
	case "ж", "жен", "f", "female":
		return model.GenderFemale
	default:
		return model.GenderUnknown
	}
}

// ExtractRecipientID pulls the numeric platform ID out of a profile link or
// free-form identifier. The explicit vk.com/id<digits> form wins; otherwise
// the first run of digits is used. An empty result means extraction failed.
func ExtractRecipientID(raw string) string {
	if m := profileRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return digitsRe.FindString(raw)
}

func isHeaderRow(row []string) bool {
	for _, c := range row {
		for _, tok := range strings.Fields(strings.ToLower(c)) {
			tok = strings.Trim(tok, ".,:;!?()")
			for _, kw := range headerKeywords {
				if tok == kw {
					return true
				}
			}
		}
	}
	return false
}

func populated(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
