package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/entries"
)

// HandleListEntries returns the caller's live entries, optionally filtered
// by ?year= and ?month=.
func (h *Handler) HandleListEntries(c echo.Context) error {
	var p domain.Period
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return h.Error(c, domain.ErrValidation)
		}
		p.Year = year
	}
	if v := c.QueryParam("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return h.Error(c, domain.ErrValidation)
		}
		p.Month = month
	}

	result, err := h.entries.List(c.Request().Context(), claimsFrom(c), p)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": result})
}

func (h *Handler) HandleGetEntry(c echo.Context) error {
	entry, err := h.entries.Get(c.Request().Context(), claimsFrom(c), c.Param("id"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entry": entry})
}

func (h *Handler) HandleCreateEntry(c echo.Context) error {
	var in entries.CreateInput
	if err := c.Bind(&in); err != nil {
		return h.Error(c, domain.ErrValidation)
	}

	entry, err := h.entries.Create(c.Request().Context(), claimsFrom(c), in)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "entry": entry})
}

func (h *Handler) HandleUpdateEntry(c echo.Context) error {
	var in entries.UpdateInput
	if err := c.Bind(&in); err != nil {
		return h.Error(c, domain.ErrValidation)
	}

	entry, err := h.entries.Update(c.Request().Context(), claimsFrom(c), c.Param("id"), in)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "entry": entry})
}

func (h *Handler) HandleDeleteEntry(c echo.Context) error {
	if err := h.entries.Delete(c.Request().Context(), claimsFrom(c), c.Param("id")); err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) HandleAddImages(c echo.Context) error {
	var body struct {
		Images []entries.ImageInput `json:"images"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, domain.ErrValidation)
	}

	images, err := h.entries.AddImages(c.Request().Context(), claimsFrom(c), c.Param("id"), body.Images)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "images": images, "count": len(images)})
}

func (h *Handler) HandleDeleteImage(c echo.Context) error {
	if err := h.entries.DeleteImage(c.Request().Context(), claimsFrom(c), c.Param("id")); err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) HandleStats(c echo.Context) error {
	counts, err := h.entries.Stats(c.Request().Context(), claimsFrom(c))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"counts": counts})
}
