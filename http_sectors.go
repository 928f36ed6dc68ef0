package accounts

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// SectorsController serves CRUD over the sector reference data.
type SectorsController struct {
	Logger  Logger
	Sectors Sectors
}

func NewSectorsController(repo RepositoryManager, opts ...SectorsControllerOption) *SectorsController {
	c := &SectorsController{
		Logger:  defLogger{},
		Sectors: repo.Sectors(),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

type SectorsControllerOption func(*SectorsController) *SectorsController

func WithSectorsLogger(logger Logger) SectorsControllerOption {
	return func(c *SectorsController) *SectorsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterRoutes mounts the endpoints on the given group, expected to be
// rooted at /sectors.
func (c *SectorsController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/", c.ListSectors, mw...)
	group.Post("/", c.CreateSector, mw...)
	group.Get("/:id", c.GetSector, mw...)
	group.Put("/:id", c.UpdateSector, mw...)
	group.Delete("/:id", c.DeleteSector, mw...)
}

func (c *SectorsController) ListSectors(ctx router.Context) error {
	sectors, err := c.Sectors.ListAll(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Sectors retrieved successfully", sectors)
}

func (c *SectorsController) GetSector(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid sector id")
	}

	sector, err := c.Sectors.GetByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return respondFail(ctx, http.StatusNotFound, "Sector not found")
		}
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Sector retrieved successfully", sector)
}

type SectorPayload struct {
	Name string `json:"name"`
}

func (r SectorPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
	)
}

func (c *SectorsController) CreateSector(ctx router.Context) error {
	payload := new(SectorPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Sector name is required")
	}

	if _, err := c.Sectors.GetByName(ctx.Context(), payload.Name); err == nil {
		return respondFail(ctx, router.StatusBadRequest, "Sector with this name already exists")
	} else if !repository.IsRecordNotFound(err) {
		return respondError(ctx, err)
	}

	sector, err := c.Sectors.Create(ctx.Context(), &Sector{Name: payload.Name})
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Sector created successfully", sector)
}

func (c *SectorsController) UpdateSector(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid sector id")
	}

	payload := new(SectorPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Sector name is required")
	}

	if _, err := c.Sectors.GetByID(ctx.Context(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return respondFail(ctx, http.StatusNotFound, "Sector not found")
		}
		return respondError(ctx, err)
	}

	// The new name must not collide with a different sector.
	if existing, err := c.Sectors.GetByName(ctx.Context(), payload.Name); err == nil && existing.ID != id {
		return respondFail(ctx, router.StatusBadRequest, "Another sector with this name already exists")
	} else if err != nil && !repository.IsRecordNotFound(err) {
		return respondError(ctx, err)
	}

	sector, err := c.Sectors.Update(ctx.Context(), &Sector{ID: id, Name: payload.Name})
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Sector updated successfully", sector)
}

func (c *SectorsController) DeleteSector(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid sector id")
	}

	deleted, err := c.Sectors.Delete(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	if !deleted {
		return respondError(ctx, goerrors.New("Sector not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound))
	}

	return respondOK(ctx, "Sector deleted successfully", nil)
}
