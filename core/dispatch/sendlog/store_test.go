package sendlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sample(id string, delivered bool, ts time.Time) Record {
	rec := Record{
		Timestamp:   ts,
		RecipientID: id,
		Label:       "Контакт " + id,
		Nonce:       42,
		Delivered:   delivered,
		LatencyMS:   120,
	}
	if !delivered {
		rec.Reason = "flood control"
	}
	return rec
}

func TestJSONLStoreAppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "send.log")
	st, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	for _, r := range []Record{
		sample("1", true, now),
		sample("2", false, now.Add(time.Second)),
		sample("1", false, now.Add(2*time.Second)),
	} {
		if err := st.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := st.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	failed, err := st.Query(ctx, Query{RecipientID: "1", OnlyFailed: true})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(failed) != 1 || failed[0].Reason != "flood control" {
		t.Fatalf("unexpected filtered result: %+v", failed)
	}
}

func TestSQLiteStoreAppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "send.db")
	st, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	if err := st.Append(ctx, sample("7", true, now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := st.Append(ctx, sample("8", false, now.Add(time.Minute))); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := st.Query(ctx, Query{Start: now.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].RecipientID != "8" {
		t.Fatalf("time filter failed: %+v", recs)
	}
}

func TestRotatingJSONLStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "send.log")
	st, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if err := st.Append(ctx, sample("9", true, time.Now())); err != nil {
		t.Fatalf("append: %v", err)
	}
	recs, err := st.Query(ctx, Query{RecipientID: "9"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
}
