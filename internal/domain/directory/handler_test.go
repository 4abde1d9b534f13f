package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/internal/platform/token"
)

func TestListDoctorsPublic_Alphabetical(t *testing.T) {
	svc, _, specs, _ := newTestService()
	sp := seedSpecialization(t, specs)
	ctx := context.Background()
	for _, name := range []string{"Dr. Zed", "Dr. Abel", "Dr. Moss"} {
		if _, err := svc.CreateDoctor(ctx, &Doctor{Name: name, SpecializationID: sp.ID}); err != nil {
			t.Fatalf("seed doctor: %v", err)
		}
	}
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListDoctorsPublic(c); err != nil {
		t.Fatalf("ListDoctorsPublic: %v", err)
	}

	var body struct {
		Data  []Doctor `json:"data"`
		Total int      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Total != 3 {
		t.Fatalf("expected 3 doctors, got %d", body.Total)
	}
	if body.Data[0].Name != "Dr. Abel" || body.Data[2].Name != "Dr. Zed" {
		t.Errorf("expected alphabetical order, got %v, %v, %v",
			body.Data[0].Name, body.Data[1].Name, body.Data[2].Name)
	}
}

// Routes are registered on two groups sharing the /api/v1 prefix, auth on
// one of them, exactly as the server wires them. The doctor directory must
// be reachable without a login while the staff listing stays guarded.
func TestDoctorRoutes_PublicDirectoryNeedsNoLogin(t *testing.T) {
	svc, _, specs, _ := newTestService()
	sp := seedSpecialization(t, specs)
	if _, err := svc.CreateDoctor(context.Background(), &Doctor{Name: "Dr. Reed", SpecializationID: sp.ID}); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	e := echo.New()
	public := e.Group("/api/v1")
	api := e.Group("/api/v1")
	api.Use(auth.Middleware(token.NewService("test-secret", time.Hour)))
	NewHandler(svc).RegisterRoutes(public, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without a login, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dr. Reed") {
		t.Error("expected the seeded doctor in the public directory")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/doctors/all", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("staff listing should require a login, got %d", rec.Code)
	}
}

func TestCreateDoctor_BadSpecializationBody(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/doctors",
		strings.NewReader(`{"name":"Dr. A","specialization_id":"`+uuid.New().String()+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateDoctor(c); err == nil {
		t.Fatal("expected error for unknown specialization")
	}
}

func TestGetDoctor_InvalidID(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/doctors/xyz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("xyz")

	err := h.GetDoctor(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestListInsurances_ActiveFilter(t *testing.T) {
	svc, _, _, insurances := newTestService()
	a := &Insurance{ID: uuid.New(), Name: "Active Plan", IsActive: true}
	b := &Insurance{ID: uuid.New(), Name: "Retired Plan", IsActive: false}
	insurances.insurances[a.ID] = a
	insurances.insurances[b.ID] = b
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/insurances?is_active=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListInsurances(c); err != nil {
		t.Fatalf("ListInsurances: %v", err)
	}
	var body struct {
		Data []Insurance `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Name != "Active Plan" {
		t.Errorf("expected only the active plan, got %+v", body.Data)
	}
}
