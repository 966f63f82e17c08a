package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core/admin"
)

type adminApi struct {
	svc *admin.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *admin.Service) {
	api := adminApi{svc: svc}

	ag := g.Group("/admins")

	ag.POST("/login", api.login)

	// account management is reserved to super admins
	sg := ag.Group("", jwt, superAdminMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)

	// any admin can introspect their own account
	ag.GET("/me", api.retrieveSelf, jwt, adminMiddleware())
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticateAdmin(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) create(ctx echo.Context) error {
	var data admin.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	adm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return ctx.JSON(http.StatusCreated, adm)
}

func (api *adminApi) query(ctx echo.Context) error {
	admins, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admins")
	}
	if admins == nil {
		admins = []admin.Admin{}
	}
	return ctx.JSON(http.StatusOK, admins)
}

func (api *adminApi) retrieve(ctx echo.Context) error {
	adm, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding admin by ID")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *adminApi) retrieveSelf(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	adm, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding admin by ID")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *adminApi) update(ctx echo.Context) error {
	var data admin.UpdateAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAdmin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	adm, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating admin")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *adminApi) destroy(ctx echo.Context) error {
	// Say No to Suicide! an admin cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Subject == ctx.Param("id") {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting admin")
	}
	return ctx.NoContent(http.StatusNoContent)
}
