// Package export writes the outcome of a bulk run to CSV or JSON for
// post-run review.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/vkblast/vkblast/core/model"
)

// Record is the flattened per-contact outcome.
type Record struct {
	FullName    string `json:"full_name"`
	FirstName   string `json:"first_name"`
	Gender      string `json:"gender"`
	RecipientID string `json:"recipient_id"`
	State       string `json:"state"`
	Reason      string `json:"reason,omitempty"`
}

func toRecord(c *model.Contact) Record {
	return Record{
		FullName:    c.FullName,
		FirstName:   c.FirstName,
		Gender:      c.Gender.String(),
		RecipientID: c.RecipientID,
		State:       c.State.String(),
		Reason:      c.FailReason,
	}
}

// WriteJSON writes the contact outcomes to w as a JSON array.
func WriteJSON(w io.Writer, contacts []*model.Contact) error {
	recs := make([]Record, len(contacts))
	for i, c := range contacts {
		recs[i] = toRecord(c)
	}
	return json.NewEncoder(w).Encode(recs)
}

// WriteCSV writes the contact outcomes to w with a header row.
func WriteCSV(w io.Writer, contacts []*model.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"full_name", "first_name", "gender", "recipient_id", "state", "reason"}); err != nil {
		return err
	}
	for _, c := range contacts {
		r := toRecord(c)
		if err := cw.Write([]string{r.FullName, r.FirstName, r.Gender, r.RecipientID, r.State, r.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
