package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/models"
	"bitbucket.org/mmdatafocus/recon_backend/models/reports"
	"bitbucket.org/mmdatafocus/recon_backend/utils"
	"bitbucket.org/mmdatafocus/recon_backend/workflow"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func requireBusiness(c *gin.Context) bool {
	businessId, ok := utils.GetBusinessIdFromContext(c.Request.Context())
	if !ok || businessId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		token, err := models.Login(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func createAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		account, err := models.CreateAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}

func createPaymentEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewPaymentEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		paymentEntry, err := models.CreatePaymentEntry(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, paymentEntry)
	}
}

func createJournalEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewJournalEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		journalEntry, err := models.CreateJournalEntry(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, journalEntry)
	}
}

func createBankAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewBankAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		bankAccount, err := models.CreateBankAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, bankAccount)
	}
}

func updateBankAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewBankAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		bankAccount, err := models.UpdateBankAccount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bankAccount)
	}
}

func listBankAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		bankAccounts, err := models.GetBankAccounts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bankAccounts)
	}
}

func createPartyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewParty
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		party, err := models.CreateParty(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, party)
	}
}

func getPartyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		party, err := models.GetParty(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, party)
	}
}

func createBulkBankTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var input models.NewBulkBankTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		bulk, err := models.CreateBulkBankTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, bulk)
	}
}

func updateBulkBankTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewBulkBankTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		bulk, err := models.UpdateBulkBankTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bulk)
	}
}

func getBulkBankTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		bulk, err := models.GetBulkBankTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bulk)
	}
}

func createTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		result, err := workflow.CreateBankTransactions(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		// Partial failures ride along with the success count; they are not a
		// transport error.
		c.JSON(http.StatusOK, result)
	}
}

type reconcileRequest struct {
	Vouchers []workflow.VoucherMatch `json:"vouchers" binding:"required"`
}

func reconcileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var req reconcileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}

		// Matches submitted without an amount are resolved through the
		// voucher lookup before submission.
		for i, m := range req.Vouchers {
			if m.Amount.IsZero() {
				details, err := workflow.LookupVoucher(c.Request.Context(), m.Type, m.Id)
				if err != nil {
					respondError(c, err)
					return
				}
				req.Vouchers[i].Amount = details.Amount
			}
		}

		bankTransaction, err := workflow.ReconcileVouchers(c.Request.Context(), id, req.Vouchers)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bankTransaction)
	}
}

type reconcileSelectedRequest struct {
	Rows []workflow.SelectionRow `json:"rows" binding:"required"`
}

func reconcileSelectedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var req reconcileSelectedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		count, err := workflow.ReconcileSelected(c.Request.Context(), req.Rows)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reconciled_count": count})
	}
}

func createPaymentEntryFromTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input workflow.NewPaymentEntryFromTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		paymentEntry, err := workflow.CreatePaymentEntryFromTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, paymentEntry)
	}
}

func createJournalEntryFromTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input workflow.NewJournalEntryFromTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		journalEntry, err := workflow.CreateJournalEntryFromTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, journalEntry)
	}
}

type fromVoucherRequest struct {
	VoucherType string `json:"voucher_type" binding:"required"`
	VoucherId   int    `json:"voucher_id" binding:"required"`
}

func createTransactionFromVoucherHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var req fromVoucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		voucherType, err := models.ParseVoucherType(req.VoucherType)
		if err != nil {
			respondError(c, err)
			return
		}
		bankTransaction, err := workflow.CreateBankTransactionFromVoucher(c.Request.Context(), voucherType, req.VoucherId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, bankTransaction)
	}
}

func getBankTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		bankTransaction, err := models.GetBankTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bankTransaction)
	}
}

func deleteBankTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteBankTransaction(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getVoucherHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		voucherType, err := models.ParseVoucherType(c.Param("type"))
		if err != nil {
			respondError(c, err)
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		details, err := workflow.LookupVoucher(c.Request.Context(), voucherType, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

func bankReconcileReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var filter reports.BankReconcileFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			respondError(c, err)
			return
		}
		report, err := reports.GetBankReconcileReport(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func bankReconcileExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		var filter reports.BankReconcileFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			respondError(c, err)
			return
		}
		report, err := reports.GetBankReconcileReport(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=bank-reconcile.xlsx")
		if err := reports.ExportBankReconcileExcel(report, c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}

type routesQuery struct {
	FromDate time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   time.Time `form:"to_date" time_format:"2006-01-02"`
}

func bankAccountRoutesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBusiness(c) {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		glAccount, err := models.GetBankAccountGLAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		var q routesQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"general_ledger":      reports.GeneralLedgerRoute(glAccount.ID, q.FromDate, q.ToDate),
			"bulk_creation_form":  reports.BulkCreationFormRoute(id),
			"reconciliation_tool": reports.ReconciliationToolRoute(id),
		})
	}
}
