package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vkblast/vkblast/core/model"
)

func sampleContacts() []*model.Contact {
	sent := model.NewContact("Анна Иванова", "vk.com/id101")
	sent.RecipientID = "101"
	sent.Gender = model.GenderFemale
	sent.State = model.StateSent

	failed := model.NewContact("Борис Петров", "vk.com/id102")
	failed.RecipientID = "102"
	failed.Gender = model.GenderMale
	failed.State = model.StateFailed
	failed.FailReason = "Flood control"

	return []*model.Contact{sent, failed}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleContacts()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "full_name,first_name,gender,recipient_id,state,reason" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[2], "Flood control") {
		t.Fatalf("failure reason missing: %s", lines[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleContacts()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var recs []Record
	if err := json.Unmarshal(buf.Bytes(), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(recs) != 2 || recs[0].State != "sent" || recs[1].Reason != "Flood control" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
