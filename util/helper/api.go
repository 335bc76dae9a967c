package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultLimit is the page size used when a request names none.
const DefaultLimit = 100

func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil {
		return 0, 0, err
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, err
	}
	if limit < 0 || offset < 0 {
		return 0, 0, strconv.ErrRange
	}
	return limit, offset, nil
}
