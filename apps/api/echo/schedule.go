package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
)

type scheduleApi struct {
	svc    *schedule.Service
	regSvc *registration.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, regSvc *registration.Service) {
	api := scheduleApi{svc: svc, regSvc: regSvc}

	sg := g.Group("/schedules")

	// public catalogue; drafts are never listed here
	sg.GET("", api.query)
	sg.GET("/:slug", api.retrieve)
	sg.GET("/:slug/capacity", api.capacity)

	// admin endpoints
	sg.GET("/drafts", api.queryAll, jwt, adminMiddleware())
	sg.GET("/drafts/:slug", api.retrieveAny, jwt, adminMiddleware())
	sg.POST("", api.create, jwt, writeAdminMiddleware())
	sg.PUT("/:slug", api.update, jwt, writeAdminMiddleware())
	sg.DELETE("/:slug", api.destroy, jwt, writeAdminMiddleware())
	sg.GET("/:slug/registrations", api.queryRegistrations, jwt, adminMiddleware())
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	schedules, err := api.svc.Query(ctx.Request().Context(), false /* includeDrafts */)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) queryAll(ctx echo.Context) error {
	schedules, err := api.svc.Query(ctx.Request().Context(), true /* includeDrafts */)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	return api.getBySlug(ctx, false /* includeDrafts */)
}

func (api *scheduleApi) retrieveAny(ctx echo.Context) error {
	return api.getBySlug(ctx, true /* includeDrafts */)
}

func (api *scheduleApi) getBySlug(ctx echo.Context, includeDrafts bool) error {
	sch, err := api.svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"), includeDrafts)
	if err != nil {
		return errors.Wrap(err, "finding schedule by slug")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.UpdateSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("slug"), data)
	if err != nil {
		return errors.Wrap(err, "updating schedule")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	force, _ := strconv.ParseBool(ctx.QueryParam("force"))

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("slug"), force); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) capacity(ctx echo.Context) error {
	sch, err := api.svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"), false /* includeDrafts */)
	if err != nil {
		return errors.Wrap(err, "finding schedule by slug")
	}

	report, err := api.regSvc.CheckScheduleCapacity(ctx.Request().Context(), sch.ID)
	if err != nil {
		return errors.Wrap(err, "checking schedule capacity")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *scheduleApi) queryRegistrations(ctx echo.Context) error {
	sch, err := api.svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"), true /* includeDrafts */)
	if err != nil {
		return errors.Wrap(err, "finding schedule by slug")
	}

	filter := registration.QueryFilter{
		SessionID: core.CleanString(ctx.QueryParam("session")),
		Status:    core.CleanString(ctx.QueryParam("status"), true /* lower */),
	}
	regs, err := api.regSvc.QueryBySchedule(ctx.Request().Context(), sch.ID, filter)
	if err != nil {
		return errors.Wrap(err, "querying schedule registrations")
	}
	if regs == nil {
		regs = []registration.Detail{}
	}
	return ctx.JSON(http.StatusOK, regs)
}
