package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexbook/dexbook/internal/scan"
)

// ScanController exposes QR reconciliation.
type ScanController struct {
	service *scan.Service
}

func NewScanController(service *scan.Service) *ScanController {
	return &ScanController{service: service}
}

type scanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Scan reconciles one scanned payload for the user in the path.
func (controller *ScanController) Scan(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "payload is required"})
		return
	}

	result := controller.service.Reconcile(userID, req.Payload)
	switch result.Outcome {
	case scan.OutcomeAdded:
		c.IndentedJSON(http.StatusOK, result)
	case scan.OutcomeRejected:
		c.IndentedJSON(http.StatusUnprocessableEntity, result)
	case scan.OutcomeNotFound:
		c.IndentedJSON(http.StatusNotFound, result)
	default:
		c.IndentedJSON(http.StatusInternalServerError, result)
	}
}
