package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/internal/platform/token"
	"github.com/clinichq/clinic/pkg/pagination"
)

type Handler struct {
	svc    *Service
	tokens *token.Service
}

func NewHandler(svc *Service, tokens *token.Service) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes wires the auth endpoints onto the public group and the
// user/participant management endpoints onto the authenticated group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/register", h.Register)
	public.POST("/auth/refresh", h.Refresh)
	public.POST("/auth/logout", h.Logout)

	users := api.Group("/users", auth.RequireRole("admin", "staff"))
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	parts := api.Group("/participants", auth.RequireRole("admin", "staff", "doctor"))
	parts.GET("", h.ListParticipants)
	parts.GET("/:id", h.GetParticipant)
	parts.POST("", h.CreateParticipant)
	parts.PUT("/:id", h.UpdateParticipant)
	parts.DELETE("/:id", h.DeleteParticipant)
}

// -- Auth --

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if creds.Username == "" || creds.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	u, err := h.svc.Authenticate(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return err
	}

	tok, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	auth.SetCookie(c, tok, h.tokens.TTL())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": tok,
		"user":  u,
	})
}

func (h *Handler) Register(c echo.Context) error {
	var reg Registration
	if err := c.Bind(&reg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, p, err := h.svc.Register(c.Request().Context(), reg)
	if err != nil {
		return err
	}

	tok, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	auth.SetCookie(c, tok, h.tokens.TTL())

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":       tok,
		"user":        u,
		"participant": p,
	})
}

// Refresh issues a fresh token for an expired but otherwise valid one,
// provided the account still exists and is active.
func (h *Handler) Refresh(c echo.Context) error {
	old := auth.TokenFromRequest(c)
	if old == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}
	claims, ok := h.tokens.ParseExpired(old)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	u, err := h.svc.GetUser(c.Request().Context(), claims.UserID())
	if err != nil || !u.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "account no longer active")
	}

	tok, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	auth.SetCookie(c, tok, h.tokens.TTL())

	return c.JSON(http.StatusOK, map[string]interface{}{"token": tok})
}

func (h *Handler) Logout(c echo.Context) error {
	auth.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// -- Users --

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f UserFilter
	if role := c.QueryParam("role"); role != "" {
		f.Role = &role
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	f.Search = c.QueryParam("search")

	items, total, err := h.svc.ListUsers(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var in CreateUserInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateUserInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.UpdateUser(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

// -- Participants --

func (h *Handler) ListParticipants(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f ParticipantFilter
	if v := c.QueryParam("insurance_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid insurance_id")
		}
		f.InsuranceID = &id
	}
	f.Search = c.QueryParam("search")

	items, total, err := h.svc.ListParticipants(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetParticipant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetParticipant(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateParticipant(c echo.Context) error {
	var p Participant
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateParticipant(c.Request().Context(), &p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateParticipant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateParticipantInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdateParticipant(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteParticipant(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteParticipant(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "participant deleted"})
}
