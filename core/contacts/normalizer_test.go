package contacts

import (
	"testing"

	"github.com/vkblast/vkblast/core/model"
)

func TestNormalizeHeaderDetection(t *testing.T) {
	rows := [][]string{
		{"Имя", "Ссылка", "Пол"},
		{"Анна Петрова", "https://vk.com/id100", "ж"},
	}
	got := Normalize(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}
	if got[0].FullName != "Анна Петрова" {
		t.Errorf("header row leaked into data: %q", got[0].FullName)
	}
}

func TestNormalizeNoHeader(t *testing.T) {
	rows := [][]string{
		{"Анна Петрова", "https://vk.com/id100", "ж"},
		{"Иван Иванов", "id200", "м"},
	}
	got := Normalize(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got))
	}
	if got[0].RecipientID != "100" || got[1].RecipientID != "200" {
		t.Errorf("unexpected IDs: %q %q", got[0].RecipientID, got[1].RecipientID)
	}
	if got[0].Gender != model.GenderFemale || got[1].Gender != model.GenderMale {
		t.Errorf("unexpected genders: %v %v", got[0].Gender, got[1].Gender)
	}
}

func TestNormalizeHeaderTokenMatching(t *testing.T) {
	// Multi-word header labels are still detected by their tokens.
	rows := [][]string{
		{"ФИО", "Ссылка на профиль", ""},
		{"Анна Петрова", "vk.com/id100", "ж"},
	}
	got := Normalize(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}

	// A data value merely containing a keyword is not a header: the first
	// row here holds a profile link and a name sharing letters with "имя".
	rows = [][]string{
		{"Имярек Петров", "vk.com/id5", "м"},
		{"Иван Иванов", "id200", "м"},
	}
	got = Normalize(rows)
	if len(got) != 2 {
		t.Fatalf("first data row dropped as header: got %d contacts", len(got))
	}
	if got[0].RecipientID != "5" {
		t.Errorf("unexpected first contact: %q", got[0].RecipientID)
	}
}

func TestNormalizeSkipsSparseRows(t *testing.T) {
	rows := [][]string{
		{"Анна Петрова", "", ""},
		{"", "", ""},
		{"Иван Иванов", "vk.com/id7"},
	}
	got := Normalize(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(got))
	}
	if got[0].FullName != "Иван Иванов" {
		t.Errorf("wrong row survived: %q", got[0].FullName)
	}
}

func TestNormalizeKeepsUnresolved(t *testing.T) {
	rows := [][]string{{"John Smith", "not-a-link", ""}}
	got := Normalize(rows)
	if len(got) != 1 {
		t.Fatalf("unresolved contact was dropped")
	}
	c := got[0]
	if c.Resolved() {
		t.Fatalf("expected unresolved ID, got %q", c.RecipientID)
	}
	if c.State != model.StateFailed || c.FailReason != FailReasonNoID {
		t.Errorf("expected failed state with %q, got %v %q", FailReasonNoID, c.State, c.FailReason)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	rows := [][]string{
		{"C", "id3"},
		{"A", "id1"},
		{"B", "id2"},
	}
	got := Normalize(rows)
	want := []string{"3", "1", "2"}
	for i, id := range want {
		if got[i].RecipientID != id {
			t.Fatalf("row order not preserved: %v", got)
		}
	}
}

func TestParseGender(t *testing.T) {
	cases := map[string]model.Gender{
		"м":     model.GenderMale,
		"МУЖ":   model.GenderMale,
		"male":  model.GenderMale,
		"Ж":     model.GenderFemale,
		"жен":   model.GenderFemale,
		"F":     model.GenderFemale,
		"":      model.GenderUnknown,
		"другое": model.GenderUnknown,
	}
	for in, want := range cases {
		if got := ParseGender(in); got != want {
			t.Errorf("ParseGender(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractRecipientID(t *testing.T) {
	cases := map[string]string{
		"https://vk.com/id3417":  "3417",
		"VK.COM/ID99":            "99",
		"some text with 555 in":  "555",
		"vk.com/durov":           "",
		"":                       "",
		"vk.com/club10 and id20": "10",
	}
	for in, want := range cases {
		if got := ExtractRecipientID(in); got != want {
			t.Errorf("ExtractRecipientID(%q) = %q, want %q", in, got, want)
		}
	}
}
