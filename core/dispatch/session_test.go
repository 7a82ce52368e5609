package dispatch

import (
	"testing"

	"github.com/vkblast/vkblast/core/model"
)

func TestSessionTokenLifecycle(t *testing.T) {
	sess := NewSession(nil)
	if sess.HasToken() {
		t.Fatalf("fresh session must not have a token")
	}
	sess.SetToken("  ")
	if sess.HasToken() {
		t.Fatalf("blank token counts as unset")
	}
	sess.SetToken("secret")
	if !sess.HasToken() || sess.Token() != "secret" {
		t.Fatalf("token not stored")
	}
}

func TestSessionEditsKeepFullName(t *testing.T) {
	c := model.NewContact("Анна Иванова", "vk.com/id101")
	sess := NewSession([]*model.Contact{c})

	if err := sess.SetFirstName(0, "Анюта"); err != nil {
		t.Fatalf("set first name: %v", err)
	}
	if err := sess.SetGender(0, model.GenderFemale); err != nil {
		t.Fatalf("set gender: %v", err)
	}
	if c.FullName != "Анна Иванова" {
		t.Fatalf("edit must never touch the full name, got %q", c.FullName)
	}
	if c.FirstName != "Анюта" || c.Gender != model.GenderFemale {
		t.Fatalf("edit not applied: %q %s", c.FirstName, c.Gender)
	}
}

func TestSessionResetState(t *testing.T) {
	sent := model.NewContact("Анна", "vk.com/id101")
	sent.RecipientID = "101"
	sent.State = model.StateSent

	sess := NewSession([]*model.Contact{sent})
	if err := sess.ResetState(0); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sent.State != model.StateIdle || sent.FailReason != "" {
		t.Fatalf("reset did not return contact to idle: %s %q", sent.State, sent.FailReason)
	}

	sent.State = model.StateSending
	if err := sess.ResetState(0); err == nil {
		t.Fatalf("resetting an in-flight contact must fail")
	}
}

func TestSessionResetUnresolved(t *testing.T) {
	u := model.NewContact("Без Ссылки", "no link")
	u.State = model.StateFailed
	u.FailReason = "ID extraction failed"

	sess := NewSession([]*model.Contact{u})
	if err := sess.ResetState(0); err == nil {
		t.Fatalf("unresolved contact must not be resettable")
	}
	if u.State != model.StateFailed || u.FailReason != "ID extraction failed" {
		t.Fatalf("failed reset modified the contact: %s %q", u.State, u.FailReason)
	}
}

func TestSessionRemoveAndClear(t *testing.T) {
	contacts := []*model.Contact{
		model.NewContact("Анна", "a"),
		model.NewContact("Борис", "b"),
		model.NewContact("Вера", "c"),
	}
	sess := NewSession(contacts)

	if err := sess.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if sess.Len() != 2 {
		t.Fatalf("expected 2 contacts, got %d", sess.Len())
	}
	c, err := sess.Contact(1)
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if c.FullName != "Вера" {
		t.Fatalf("remove shifted wrong element: %q", c.FullName)
	}
	if err := sess.Remove(5); err == nil {
		t.Fatalf("out-of-range remove must fail")
	}

	sess.Clear()
	if sess.Len() != 0 {
		t.Fatalf("clear left %d contacts", sess.Len())
	}
}

func TestSessionSnapshotIsStable(t *testing.T) {
	contacts := []*model.Contact{
		model.NewContact("Анна", "a"),
		model.NewContact("Борис", "b"),
	}
	sess := NewSession(contacts)
	snap := sess.Snapshot()
	if err := sess.Remove(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(snap) != 2 || snap[0].FullName != "Анна" {
		t.Fatalf("snapshot changed after removal: %v", snap)
	}
}

func TestSessionBulkFlag(t *testing.T) {
	sess := NewSession(nil)
	if err := sess.beginBulk(); err != nil {
		t.Fatalf("beginBulk: %v", err)
	}
	if !sess.Busy() {
		t.Fatalf("expected busy during bulk")
	}
	if err := sess.beginBulk(); err != ErrBulkInProgress {
		t.Fatalf("expected ErrBulkInProgress, got %v", err)
	}
	sess.endBulk()
	if sess.Busy() {
		t.Fatalf("still busy after endBulk")
	}
}
