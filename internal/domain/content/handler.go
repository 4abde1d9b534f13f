package content

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

func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	// Published articles are readable without a login.
	public.GET("/articles", h.ListPublic)
	public.GET("/articles/:id", h.Get)

	// GET /articles belongs to the public list above; the staff listing,
	// drafts included, lives at /all so the two cannot shadow each other.
	articles := api.Group("/articles", auth.RequireRole("admin", "staff"))
	articles.GET("/all", h.List)
	articles.POST("", h.Create)
	articles.PUT("/:id", h.Update)
	articles.DELETE("/:id", h.Delete)
}

func (h *Handler) list(c echo.Context, f ArticleFilter) error {
	pg := pagination.FromContext(c)
	f.Search = c.QueryParam("search")

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// ListPublic only ever shows published articles, ordered by title.
func (h *Handler) ListPublic(c echo.Context) error {
	published := true
	return h.list(c, ArticleFilter{Published: &published, Alphabetical: true})
}

func (h *Handler) List(c echo.Context) error {
	var f ArticleFilter
	if v := c.QueryParam("is_published"); v != "" {
		b := v == "true"
		f.Published = &b
	}
	return h.list(c, f)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Create(c echo.Context) error {
	var a Article
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &a)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateArticleInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "article deleted"})
}
