// api/router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/cache"
	"github.com/mapcanvas/atlas/api/controller"
	"github.com/mapcanvas/atlas/api/middleware"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
)

// SetupRouter wires the middleware chain and route tree. Everything
// under the API root passes the gate and the response cache; the
// account and session endpoints live outside it and are neither gated
// nor cached.
func SetupRouter(
	controllers *controller.Controllers,
	datasets service.IDataSetService,
	resolver *auth.Resolver,
	engine *cache.Engine,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.CORS())

	router.GET("/", apiRoot)

	account := router.Group("/auth")
	controllers.User.RegisterAuthRoutes(account)

	api := router.Group(model.APIRoot)
	api.Use(middleware.Gate(datasets, resolver, engine))
	api.Use(middleware.ResponseCache(engine))

	controllers.User.RegisterRoutes(api)
	controllers.DataSet.RegisterRoutes(api)
	controllers.Resource.RegisterRoutes(api)

	return router
}

// apiRoot describes the service entry points.
func apiRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users":    "/auth/users",
		"session":  "/auth/session",
		"profiles": model.APIRoot + "/:owner_username",
		"datasets": model.APIRoot + "/:owner_username/datasets",
	})
}
