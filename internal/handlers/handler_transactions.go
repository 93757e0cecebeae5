package handlers

import (
	"net/http"

	"github.com/SscSPs/family_bank/internal/auth"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/dto"

	"github.com/gin-gonic/gin"
)

// transactionHandler handles ledger listings.
type transactionHandler struct {
	listTransactions auth.Guarded[dto.ListTransactionsRequest, *dto.ListTransactionsResponse]
}

func newTransactionHandler(verifier portssvc.TokenVerifier, svc portssvc.TransactionSvc) *transactionHandler {
	return &transactionHandler{
		listTransactions: auth.Guard[dto.ListTransactionsRequest, *dto.ListTransactionsResponse](verifier, auth.AnyAuthenticated(), svc.ListTransactions),
	}
}

func registerTransactionRoutes(rg *gin.RouterGroup, verifier portssvc.TokenVerifier, svc portssvc.TransactionSvc) {
	h := newTransactionHandler(verifier, svc)
	rg.GET("/transactions", h.list)
}

// list godoc
// @Summary List transactions
// @Description Lists the caller's ledger, or a child's ledger when the caller is its parent
// @Tags transactions
// @Produce  json
// @Param   userId query string false "Account to list; defaults to the caller"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Continuation token from the previous page"
// @Param   order query string false "desc (newest first) or asc" default(desc)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query or token"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the caller's child"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) list(c *gin.Context) {
	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}
	serve(c, h.listTransactions, req, http.StatusOK)
}
