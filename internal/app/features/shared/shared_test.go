package shared_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestPathID(t *testing.T) {
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	valid := primitive.NewObjectID()

	tests := []struct {
		name   string
		value  string
		wantOK bool
	}{
		{"valid", valid.Hex(), true},
		{"malformed", "not-an-id", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", tt.value)
			rec := httptest.NewRecorder()

			got, ok := shared.PathID(rec, req, errLog, "id")
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got != valid {
				t.Errorf("id: got %s, want %s", got.Hex(), valid.Hex())
			}
			if !ok && rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestActor_Anonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, ok := shared.Actor(rec, httptest.NewRequest("GET", "/", nil), uierrors.NewErrorLogger(zap.NewNop())); ok {
		t.Fatal("expected no actor")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLines(t *testing.T) {
	id := primitive.NewObjectID()
	got := shared.Lines([]shared.ResourceLine{{ResourceID: id.Hex(), Quantity: 3}})
	if len(got) != 1 || got[0].ResourceID != id || got[0].Quantity != 3 {
		t.Errorf("unexpected lines: %+v", got)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-11-02", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), false},
		{"2026-11-02T09:30:00+02:00", time.Date(2026, 11, 2, 7, 30, 0, 0, time.UTC), false},
		{"02/11/2026", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := shared.Date("date", tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
