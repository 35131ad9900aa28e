package endpoint

import (
	"fmt"
	"strconv"

	"github.com/diyetisyenim/diyet-api/middleware"
	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// caller is the authenticated identity resolved by the access guard.
type caller struct {
	ID       uint
	Username string
	Role     model.Role
}

// callerOrRespond extracts the authenticated identity, responding 401
// when the guard did not run.
func callerOrRespond(c *gin.Context) (caller, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("no authenticated identity in context"),
		})
		return caller{}, false
	}
	username, _ := middleware.GetUsername(c)
	role, _ := middleware.GetRole(c)
	return caller{ID: id, Username: username, Role: role}, true
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// idParamOrRespond parses the :id route parameter.
func idParamOrRespond(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid id parameter",
			Err: fmt.Errorf("id must be a positive integer"),
		})
		return 0, false
	}
	return uint(id), true
}

type listQuery struct {
	Limit   int
	Offset  int
	Keyword string
}

// parseListQuery reads the common limit/offset/keyword query parameters.
func parseListQuery(c *gin.Context) listQuery {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return listQuery{
		Limit:   limit,
		Offset:  offset,
		Keyword: c.Query("keyword"),
	}
}

func applyListQuery(query *gorm.DB, q listQuery) *gorm.DB {
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	return query
}

// userHasRole verifies that a user row exists with the expected role,
// used to validate cross-references like a plan's clientId.
func userHasRole(db *gorm.DB, userID uint, role model.Role) error {
	var user model.User
	err := db.First(&user, userID).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return err
	}
	if user.Role != role {
		return fmt.Errorf("user %d is not a %s", userID, role)
	}
	return nil
}

// enforceOwnership applies an ownership rule, responding 403 and logging
// when the caller does not own the row.
func enforceOwnership(c *gin.Context, who caller, rule util.OwnershipRule, resource string) bool {
	if rule.Allows(who.ID, who.Role) {
		return true
	}
	util.LogForbiddenAccess(who.ID, who.Username, c.ClientIP(), resource, "ownership check failed")
	util.CallUserForbidden(c, util.APIErrorParams{
		Msg: fmt.Sprintf("You can only modify your own %s", resource),
		Err: fmt.Errorf("ownership check failed"),
	})
	return false
}
