package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service) {
	api := catalogApi{svc: svc}

	// public storefront
	cg := g.Group("/catalog")
	cg.GET("/categories", api.queryCategories)
	cg.GET("/products", api.queryProducts)
	cg.GET("/products/:idOrSlug", api.retrieveProduct)
	cg.POST("/requests", api.createRequest)

	// admin management
	ag := cg.Group("", jwt, writeAdminMiddleware())
	ag.POST("/categories", api.createCategory)
	ag.DELETE("/categories/:id", api.destroyCategory)
	ag.POST("/products", api.createProduct)
	ag.PUT("/products/:idOrSlug", api.updateProduct)
	ag.DELETE("/products/:id", api.destroyProduct)
	ag.PUT("/requests/:id/handled", api.markRequestHandled)
	cg.GET("/requests", api.queryRequests, jwt, adminMiddleware())
}

// Handlers

func (api *catalogApi) createCategory(ctx echo.Context) error {
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *catalogApi) destroyCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) createProduct(ctx echo.Context) error {
	var data catalog.NewProduct
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProduct")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prod, err := api.svc.CreateProduct(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prod)
}

func (api *catalogApi) queryProducts(ctx echo.Context) error {
	prods, err := api.svc.QueryProducts(ctx.Request().Context(), core.CleanString(ctx.QueryParam("category")))
	if err != nil {
		return errors.Wrap(err, "querying products")
	}
	if prods == nil {
		prods = []catalog.Product{}
	}
	return ctx.JSON(http.StatusOK, prods)
}

func (api *catalogApi) retrieveProduct(ctx echo.Context) error {
	prod, err := api.svc.GetProduct(ctx.Request().Context(), ctx.Param("idOrSlug"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prod)
}

func (api *catalogApi) updateProduct(ctx echo.Context) error {
	var data catalog.UpdateProduct
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProduct")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prod, err := api.svc.UpdateProduct(ctx.Request().Context(), ctx.Param("idOrSlug"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prod)
}

func (api *catalogApi) destroyProduct(ctx echo.Context) error {
	if err := api.svc.DeleteProduct(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) createRequest(ctx echo.Context) error {
	var data catalog.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	req, err := api.svc.CreateRequest(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *catalogApi) queryRequests(ctx echo.Context) error {
	status := core.CleanString(ctx.QueryParam("status"), true /* lower */)
	reqs, err := api.svc.QueryRequests(ctx.Request().Context(), status)
	if err != nil {
		return errors.Wrap(err, "querying product requests")
	}
	if reqs == nil {
		reqs = []catalog.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *catalogApi) markRequestHandled(ctx echo.Context) error {
	req, err := api.svc.MarkRequestHandled(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}
