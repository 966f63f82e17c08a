package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/page"
)

type pageApi struct {
	svc *page.Service
}

func registerPageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *page.Service) {
	api := pageApi{svc: svc}

	pg := g.Group("/pages")
	pg.GET("/:name", api.retrieve)
	pg.PUT("/:name", api.update, jwt, writeAdminMiddleware())
}

// Handlers

func (api *pageApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pageApi) update(ctx echo.Context) error {
	var data page.UpdatePage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("name"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
