package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/app"
	"studyplanner/internal/transport/http/response"
)

const syllabusFormField = "pdf"

type SyllabusHandler struct {
	syllabusService *app.SyllabusService
	maxUploadBytes  int64
}

func NewSyllabusHandler(syllabusService *app.SyllabusService, maxUploadMB int) *SyllabusHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &SyllabusHandler{
		syllabusService: syllabusService,
		maxUploadBytes:  int64(maxUploadMB) << 20,
	}
}

func (h *SyllabusHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, err := c.FormFile(syllabusFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeUploadTooLarge, "uploaded file is too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no pdf file uploaded")
		return
	}
	if file.Filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no selected file")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	defer src.Close()

	result, err := h.syllabusService.Upload(c.Request.Context(), file.Filename, src)
	if err != nil {
		writeError(c, err, "upload syllabus failed")
		return
	}

	response.OKWithMessage(c, "PDF uploaded, syllabus extracted & indexed", result)
}

func (h *SyllabusHandler) Current(c *gin.Context) {
	summary, err := h.syllabusService.Current(c.Request.Context())
	if err != nil {
		writeError(c, err, "get syllabus failed")
		return
	}
	response.OK(c, summary)
}

func (h *SyllabusHandler) Search(c *gin.Context) {
	topK := 0
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid top_k")
			return
		}
		topK = parsed
	}

	results, err := h.syllabusService.Search(c.Request.Context(), c.Query("q"), topK)
	if err != nil {
		writeError(c, err, "search syllabus failed")
		return
	}

	response.OK(c, results)
}
