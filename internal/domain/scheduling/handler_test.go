package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
)

func TestMineHandler_ReturnsSweptList(t *testing.T) {
	svc, repo, dir := newTestService()

	userID := uuid.New()
	pid := uuid.New()
	dir.byUser[userID] = pid
	a := &Appointment{
		ID: uuid.New(), ParticipantID: pid, DoctorID: uuid.New(),
		Date: time.Now().AddDate(0, 0, -2), Status: StatusScheduled,
	}
	repo.appointments[a.ID] = a

	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/mine", nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Mine(c); err != nil {
		t.Fatalf("Mine: %v", err)
	}

	var body struct {
		Data []Appointment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(body.Data))
	}
	if body.Data[0].Status != StatusCompleted {
		t.Errorf("expected swept status completed, got %s", body.Data[0].Status)
	}
}

func TestListHandler_StatusFilter(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, status := range []string{StatusScheduled, StatusCancelled} {
		a := &Appointment{
			ID: uuid.New(), ParticipantID: uuid.New(), DoctorID: uuid.New(),
			Date: time.Now(), Status: status,
		}
		repo.appointments[a.ID] = a
	}

	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments?status=cancelled", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	var body struct {
		Data []Appointment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Status != StatusCancelled {
		t.Errorf("expected only the cancelled appointment, got %+v", body.Data)
	}
}

func TestCreateHandler_InvalidBody(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestGetHandler_InvalidID(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
