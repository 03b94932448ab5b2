package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/services"
)

type CaseController struct {
	cases *services.CaseService
}

func NewCaseController(cases *services.CaseService) *CaseController {
	return &CaseController{cases: cases}
}

func (cc *CaseController) GetCases(c *gin.Context) {
	filter := repository.CaseFilter{
		Status:   models.CaseStatus(c.Query("status")),
		ClientID: c.Query("clientId"),
		StaffID:  c.Query("staffId"),
	}

	cases, err := cc.cases.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		respondError(c, err, "case_controller")
		return
	}

	c.JSON(http.StatusOK, cases)
}

func (cc *CaseController) GetCase(c *gin.Context) {
	view, err := cc.cases.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "case_controller")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (cc *CaseController) CreateCase(c *gin.Context) {
	var req services.CaseInput
	if !bindJSON(c, &req) {
		return
	}

	view, err := cc.cases.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "case_controller")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (cc *CaseController) UpdateCase(c *gin.Context) {
	var req services.CaseUpdate
	if !bindJSON(c, &req) {
		return
	}

	view, err := cc.cases.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "case_controller")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (cc *CaseController) DeleteCase(c *gin.Context) {
	if err := cc.cases.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "case_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case deleted successfully"})
}
