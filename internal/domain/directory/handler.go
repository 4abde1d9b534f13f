package directory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the public directory listings and the staff-managed
// write endpoints.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	// The doctor directory and insurance lookup are readable without a login.
	public.GET("/doctors", h.ListDoctorsPublic)
	public.GET("/insurances", h.ListInsurances)
	public.GET("/specializations", h.ListSpecializations)

	// GET /doctors belongs to the public directory above; the staff listing
	// in creation order lives at /all so the two cannot shadow each other.
	doctors := api.Group("/doctors", auth.RequireRole("admin", "staff"))
	doctors.GET("/all", h.ListDoctors)
	doctors.GET("/:id", h.GetDoctor)
	doctors.POST("", h.CreateDoctor)
	doctors.PUT("/:id", h.UpdateDoctor)
	doctors.DELETE("/:id", h.DeleteDoctor)

	specs := api.Group("/specializations", auth.RequireRole("admin", "staff"))
	specs.GET("/:id", h.GetSpecialization)
	specs.POST("", h.CreateSpecialization)
	specs.PUT("/:id", h.UpdateSpecialization)
	specs.DELETE("/:id", h.DeleteSpecialization)

	ins := api.Group("/insurances", auth.RequireRole("admin", "staff"))
	ins.GET("/:id", h.GetInsurance)
	ins.POST("", h.CreateInsurance)
	ins.PUT("/:id", h.UpdateInsurance)
	ins.DELETE("/:id", h.DeleteInsurance)
}

// -- Doctors --

func (h *Handler) listDoctors(c echo.Context, alphabetical bool) error {
	pg := pagination.FromContext(c)

	f := DoctorFilter{Alphabetical: alphabetical, Search: c.QueryParam("search")}
	if v := c.QueryParam("specialization_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid specialization_id")
		}
		f.SpecializationID = &id
	}

	items, total, err := h.svc.ListDoctors(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListDoctorsPublic(c echo.Context) error { return h.listDoctors(c, true) }
func (h *Handler) ListDoctors(c echo.Context) error       { return h.listDoctors(c, false) }

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateDoctor(c.Request().Context(), &d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateDoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "doctor deleted"})
}

// -- Specializations --

func (h *Handler) ListSpecializations(c echo.Context) error {
	pg := pagination.FromContext(c)
	var isActive *bool
	if v := c.QueryParam("is_active"); v != "" {
		b := v == "true"
		isActive = &b
	}
	items, total, err := h.svc.ListSpecializations(c.Request().Context(), isActive, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetSpecialization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sp, err := h.svc.GetSpecialization(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) CreateSpecialization(c echo.Context) error {
	var sp Specialization
	if err := c.Bind(&sp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateSpecialization(c.Request().Context(), &sp)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateSpecialization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateSpecializationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sp, err := h.svc.UpdateSpecialization(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) DeleteSpecialization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSpecialization(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "specialization deleted"})
}

// -- Insurances --

func (h *Handler) ListInsurances(c echo.Context) error {
	pg := pagination.FromContext(c)
	var isActive *bool
	if v := c.QueryParam("is_active"); v != "" {
		b := v == "true"
		isActive = &b
	}
	items, total, err := h.svc.ListInsurances(c.Request().Context(), isActive, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetInsurance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ins, err := h.svc.GetInsurance(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ins)
}

func (h *Handler) CreateInsurance(c echo.Context) error {
	var ins Insurance
	if err := c.Bind(&ins); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateInsurance(c.Request().Context(), &ins)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateInsurance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInsuranceInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ins, err := h.svc.UpdateInsurance(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ins)
}

func (h *Handler) DeleteInsurance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteInsurance(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "insurance deleted"})
}
