package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/tutor"
)

type tutorApi struct {
	svc     *tutor.Service
	schdSvc *schedule.Service
	regSvc  *registration.Service
}

func registerTutorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *tutor.Service, schdSvc *schedule.Service, regSvc *registration.Service) {
	api := tutorApi{svc: svc, schdSvc: schdSvc, regSvc: regSvc}

	tg := g.Group("/tutors")

	tg.POST("/login", api.login)
	tg.GET("", api.query) // public directory

	// tutor portal
	tg.GET("/me", api.retrieveSelf, jwt, tutorMiddleware())
	tg.GET("/me/schedules", api.queryOwnSchedules, jwt, tutorMiddleware())
	tg.GET("/me/schedules/:slug/registrations", api.queryOwnScheduleRegistrations, jwt, tutorMiddleware())

	// admin management
	ag := tg.Group("", jwt, writeAdminMiddleware())
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)

	tg.GET("/:id", api.retrieve)
}

// Handlers

func (api *tutorApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticateTutor(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *tutorApi) create(ctx echo.Context) error {
	var data tutor.NewTutor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTutor")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating tutor")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *tutorApi) query(ctx echo.Context) error {
	tutors, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	if tutors == nil {
		tutors = []tutor.Tutor{}
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *tutorApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding tutor by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) retrieveSelf(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	t, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding tutor by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) queryOwnSchedules(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	schedules, err := api.schdSvc.QueryByTutor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying tutor schedules")
	}
	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

// queryOwnScheduleRegistrations lists registrations for a schedule the tutor
// teaches at least one session of. Other schedules are off limits.
func (api *tutorApi) queryOwnScheduleRegistrations(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sch, err := api.schdSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"), true /* includeDrafts */)
	if err != nil {
		return errors.Wrap(err, "finding schedule by slug")
	}

	var assigned bool
	for _, sess := range sch.Sessions {
		if sess.TutorID == claims.Subject {
			assigned = true
			break
		}
	}
	if !assigned {
		return errHttpForbidden
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

func (api *tutorApi) update(ctx echo.Context) error {
	var data tutor.UpdateTutor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTutor")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating tutor")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tutorApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting tutor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
