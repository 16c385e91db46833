package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/app"
	"studyplanner/internal/planner"
	"studyplanner/internal/transport/http/response"
)

type PlanHandler struct {
	planService *app.PlanService
}

type GeneratePlanRequest struct {
	Subjects    []string  `json:"subjects"`
	ExamDate    string    `json:"exam_date"`
	HoursPerDay FlexFloat `json:"hours_per_day"`
}

// FlexFloat decodes a JSON number or a numeric string. Form inputs post
// hours_per_day as a string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse number %q failed: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("number %q is not finite", raw)
	}
	*f = FlexFloat(v)
	return nil
}

func NewPlanHandler(planService *app.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) Generate(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	plans, err := h.planService.Generate(c.Request.Context(), planner.Request{
		Subjects:    req.Subjects,
		ExamDate:    req.ExamDate,
		HoursPerDay: float64(req.HoursPerDay),
	})
	if err != nil {
		writeError(c, err, "generate plan failed")
		return
	}

	response.OKWithMessage(c, "Plan generated from syllabus (RAG)!", plans)
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planService.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "list plans failed")
		return
	}
	response.OK(c, plans)
}

func (h *PlanHandler) MarkDone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.planService.MarkDone(c.Request.Context(), id); err != nil {
		writeError(c, err, "mark plan done failed")
		return
	}
	response.OKWithMessage(c, "Plan marked as done", gin.H{"id": id})
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "delete plan failed")
		return
	}
	response.OKWithMessage(c, "Plan deleted", gin.H{"deleted_id": id})
}

func (h *PlanHandler) DeleteAll(c *gin.Context) {
	if err := h.planService.DeleteAll(c.Request.Context()); err != nil {
		writeError(c, err, "delete plans failed")
		return
	}
	response.OKWithMessage(c, "All plans deleted successfully!", nil)
}

func (h *PlanHandler) Next(c *gin.Context) {
	next, err := h.planService.Next(c.Request.Context())
	if err != nil {
		writeError(c, err, "get next plan failed")
		return
	}
	if next == nil {
		response.OKWithMessage(c, "No pending tasks found! You can revise or take a mock test", gin.H{"task": nil})
		return
	}
	response.OKWithMessage(c, "You should work on this topic now:", gin.H{"task": next})
}

func (h *PlanHandler) DailyGoals(c *gin.Context) {
	goals, err := h.planService.DailyGoals(c.Request.Context())
	if err != nil {
		writeError(c, err, "get daily goals failed")
		return
	}
	response.OKWithMessage(c, "Daily Goal Mode: Complete these 3 topics today", goals)
}

func parseUintParam(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
