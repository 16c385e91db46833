package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/app"
	"studyplanner/internal/planner"
	"studyplanner/internal/transport/http/response"
)

// writeError maps service errors to a status and envelope code. Unknown
// errors become a 500 carrying fallback instead of the error text.
func writeError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, app.ErrEmptyExtractedText):
		response.Error(c, http.StatusBadRequest, response.CodeEmptySyllabus, app.ErrEmptyExtractedText.Error())
	case errors.Is(err, planner.ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPlanInput, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrPlanNotFound):
		response.Error(c, http.StatusNotFound, response.CodePlanNotFound, err.Error())
	case errors.Is(err, app.ErrNoSyllabus):
		response.Error(c, http.StatusNotFound, response.CodeNoSyllabus, err.Error())
	case errors.Is(err, planner.ErrPlanGenerationFailed):
		response.Error(c, http.StatusBadGateway, response.CodePlanGeneration, "the model did not return a usable plan, please try again")
	case errors.Is(err, planner.ErrModelInvocation):
		response.Error(c, http.StatusBadGateway, response.CodeModelUnavailable, "the language model is unavailable")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid plan id")
		return 0, false
	}
	return id, true
}
