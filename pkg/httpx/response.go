package httpx

import (
	"github.com/gin-gonic/gin"

	"amity-social/pkg/errs"
)

// WriteObject 输出JSON响应，状态码由领域错误决定
func WriteObject(c *gin.Context, obj interface{}, err error) {
	c.JSON(errs.StatusOf(err), obj)
}

// WriteError 输出领域错误响应
func WriteError(c *gin.Context, err error) {
	if e, ok := errs.From(err); ok {
		c.JSON(e.Status, gin.H{"message": e.Message})
		return
	}
	c.JSON(errs.StatusOf(err), gin.H{"message": "internal server error"})
}
