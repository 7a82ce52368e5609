package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apisendlog "github.com/vkblast/vkblast/api/sendlog"
	"github.com/vkblast/vkblast/core/contacts"
	"github.com/vkblast/vkblast/core/dispatch"
	"github.com/vkblast/vkblast/core/dispatch/sendlog"
	"github.com/vkblast/vkblast/core/model"
	"github.com/vkblast/vkblast/core/template"
	"github.com/vkblast/vkblast/core/transport"
	"github.com/vkblast/vkblast/infra/logger"
	"github.com/vkblast/vkblast/infra/spreadsheet"
)

// The whole pipeline: sheet file, normalization, bulk send over a mock
// transport, audit log, report API.
func TestImportPersonalizeDispatchReport(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "contacts.csv")
	content := strings.Join([]string{
		"Имя,Ссылка,Пол",
		"Анна Иванова,vk.com/id101,ж",
		"Борис Петров,vk.com/id102,м",
		"Вера Смирнова,https://vk.com/id103,жен",
		"Без Ссылки,профиль скрыт,м",
	}, "\n") + "\n"
	if err := os.WriteFile(sheet, []byte(content), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	rows, err := spreadsheet.ReadFile(sheet, spreadsheet.Options{})
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	list := contacts.Normalize(rows)
	if len(list) != 4 {
		t.Fatalf("expected 4 contacts, got %d", len(list))
	}

	store, err := sendlog.NewJSONLStore(filepath.Join(dir, "send.log"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer func() { _ = store.Close() }()

	mock := transport.NewMockClient()
	eng := template.New(template.DefaultGrammar())
	orch, err := dispatch.NewOrchestrator(mock, eng, dispatch.Config{SendPauseMS: 1, SendTimeoutSeconds: 1},
		logger.NopLogger{}, nil, nil, store)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	sess := dispatch.NewSession(list)
	sess.SetToken("tok")

	tpl := "Привет, {имя}! Ты {м:молодец|ж:умница}."
	sum, err := orch.SendAll(context.Background(), sess, tpl)
	if err != nil {
		t.Fatalf("sendall: %v", err)
	}
	if sum.Total != 4 || sum.Sent != 3 || sum.Skipped != 1 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	texts := map[string]string{}
	for _, m := range mock.Sent {
		texts[m.RecipientID] = m.Text
	}
	if texts["101"] != "Привет, Анна! Ты умница." {
		t.Errorf("female rendering wrong: %q", texts["101"])
	}
	if texts["102"] != "Привет, Борис! Ты молодец." {
		t.Errorf("male rendering wrong: %q", texts["102"])
	}
	if texts["103"] != "Привет, Вера! Ты умница." {
		t.Errorf("gender token 'жен' not honored: %q", texts["103"])
	}

	// The unresolved contact stays marked, never touched the transport.
	var unresolved *model.Contact
	for _, c := range list {
		if !c.Resolved() {
			unresolved = c
		}
	}
	if unresolved == nil || unresolved.State != model.StateFailed {
		t.Fatalf("unresolved contact missing or not failed")
	}

	// Report API serves the audit log.
	srv := httptest.NewServer(apisendlog.NewHandler(store, "report-tok"))
	defer srv.Close()
	req, _ := http.NewRequest("GET", srv.URL+"/api/sendlog", nil)
	req.Header.Set("Authorization", "Bearer report-tok")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var recs []sendlog.Record
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 audit records, got %d", len(recs))
	}
}
