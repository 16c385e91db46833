package response

import "github.com/gin-gonic/gin"

const (
	CodeOK               = 0
	CodeBadRequest       = 40000
	CodeEmptySyllabus    = 40001
	CodeInvalidPlanInput = 40002
	CodePlanNotFound     = 40401
	CodeNoSyllabus       = 40402
	CodeUploadTooLarge   = 41300
	CodeInternalServer   = 50000
	CodePlanGeneration   = 50201
	CodeModelUnavailable = 50202
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// OKWithMessage is OK with a human-readable message for the UI.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
