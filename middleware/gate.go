// api/middleware/gate.go

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/cache"
	"github.com/mapcanvas/atlas/api/dao"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
)

// Gate is the single access-control chokepoint. It loads the addressed
// dataset, resolves the request's principal pair once, evaluates the
// permission policy for the abilities the request needs, and stores the
// outcome in the request context for everything downstream. Handlers
// never re-run authentication.
func Gate(datasets service.IDataSetService, resolver *auth.Resolver, engine *cache.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dataset *model.DataSet

		ownerUsername := c.Param("owner_username")
		slug := c.Param("dataset_slug")
		if slug != "" {
			ds, err := datasets.GetDataSet(c.Request.Context(), ownerUsername, slug)
			if err != nil {
				if errors.Is(err, atlas_errors.ErrDataSetNotFound) {
					util.RespondWithError(c, http.StatusNotFound, "Dataset not found", err)
				} else {
					util.RespondWithError(c, http.StatusInternalServerError, "Failed to load dataset", err)
				}
				c.Abort()
				return
			}
			dataset = ds
		}

		principal, err := resolver.Resolve(c.Request.Context(), c.Request, dataset)
		if err != nil {
			util.RespondWithError(c, http.StatusUnauthorized, "Authentication rejected", err)
			c.Abort()
			return
		}

		includeInvisible := c.Query(auth.IncludeInvisibleParam) != ""
		includePrivate := c.Query(auth.IncludePrivateParam) != ""
		includeSubmissions := c.Query(auth.IncludeSubmissionsParam) != ""

		abilities := requiredAbilities(c.Request.Method, includePrivate, includeInvisible)
		claims, submissionSet := routeIdentity(c)

		groupToken := auth.GroupTokenFor(principal.Subject, dataset)
		if dataset != nil {
			decision := auth.Authorize(principal, dataset, submissionSet, abilities...)
			if !decision.Allowed {
				logger.Warn("Access denied",
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("reason", decision.Reason))
				util.RespondWithError(c, http.StatusForbidden, decision.Reason, atlas_errors.ErrPermissionDenied)
				c.Abort()
				return
			}
			groupToken = decision.GroupToken
		}

		if sub := principal.Subject; sub != nil {
			ctx := context.WithValue(c.Request.Context(), dao.RequestingUserKey, sub.Username())
			if c.Query("silent") != "" && dataset != nil && (sub.User.IsAdmin || sub.IsOwnerOf(dataset)) {
				ctx = service.WithSilentMutations(ctx)
			}
			c.Request = c.Request.WithContext(ctx)
		}

		auth.SetRequestContext(c, &auth.RequestContext{
			Principal:          principal,
			Dataset:            dataset,
			GroupToken:         groupToken,
			Claims:             claims,
			Buffer:             engine.NewBuffer(),
			IncludeInvisible:   includeInvisible,
			IncludePrivate:     includePrivate,
			IncludeSubmissions: includeSubmissions,
		})

		c.Next()
	}
}

// OwnerOnly restricts a gated route to the dataset owner (or an
// admin). Routes that manage credentials and dataset lifecycle sit
// behind this regardless of any permission rule.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := auth.GetRequestContext(c)
		sub := rc.Subject()
		if sub == nil {
			util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", atlas_errors.ErrAuthenticationRejected)
			c.Abort()
			return
		}
		if sub.User.IsAdmin {
			c.Next()
			return
		}

		if rc.Dataset != nil {
			if !sub.IsOwnerOf(rc.Dataset) {
				util.RespondWithError(c, http.StatusForbidden, "Owner access required", atlas_errors.ErrPermissionDenied)
				c.Abort()
				return
			}
		} else if owner := c.Param("owner_username"); owner != "" && owner != sub.Username() {
			util.RespondWithError(c, http.StatusForbidden, "Owner access required", atlas_errors.ErrPermissionDenied)
			c.Abort()
			return
		}

		c.Next()
	}
}

// routeIdentity maps the matched route's parameters onto the identity
// claims the path asserts and the submission set the request addresses.
// The dataset subtree is routed on generic segment parameters because
// gin's tree cannot hold a literal segment beside a parameter at the
// same level, so the semantic names are recovered here.
func routeIdentity(c *gin.Context) (map[string]string, string) {
	claims := make(map[string]string)
	if v := c.Param("owner_username"); v != "" {
		claims["owner_username"] = v
	}
	if v := c.Param("dataset_slug"); v != "" {
		claims["dataset_slug"] = v
	}

	resource := c.Param("resource")
	resourceID := c.Param("resource_id")
	subresource := c.Param("subresource")
	subresourceID := c.Param("subresource_id")

	switch resource {
	case "":
		return claims, ""
	case service.PlacesSet:
		if resourceID != "" {
			claims["place_id"] = resourceID
		}
		switch subresource {
		case "":
			return claims, service.PlacesSet
		case "attachments":
			if subresourceID != "" {
				claims["attachment_id"] = subresourceID
			}
			return claims, service.PlacesSet
		default:
			claims["submission_set_name"] = subresource
			if subresourceID != "" {
				claims["submission_id"] = subresourceID
			}
			return claims, subresource
		}
	case "actions", "keys", "origins", "groups", "metadata":
		return claims, ""
	default:
		// Dataset-scoped submission set listing: the segment is the set
		// name itself.
		claims["submission_set_name"] = resource
		return claims, resource
	}
}

func requiredAbilities(method string, includePrivate, includeInvisible bool) []model.Ability {
	var abilities []model.Ability
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		abilities = append(abilities, model.AbilityRead)
	default:
		abilities = append(abilities, model.AbilityWrite)
	}
	if includePrivate {
		abilities = append(abilities, model.AbilityReadPrivate)
	}
	if includeInvisible {
		abilities = append(abilities, model.AbilityReadInvisible)
	}
	return abilities
}
