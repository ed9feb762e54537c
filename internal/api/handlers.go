package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/assets"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/model"
	"github.com/greenbooks-dev/greenbooks/internal/posting"
	"github.com/greenbooks-dev/greenbooks/internal/tax"
)

const dateFormat = "2006-01-02"

type taxRequest struct {
	Enabled   bool            `json:"enabled"`
	Type      string          `json:"type"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Inclusive bool            `json:"inclusive"`
}

func (t taxRequest) settings() tax.Settings {
	return tax.Settings{
		Enabled:   t.Enabled,
		Type:      tax.Type(t.Type),
		Rate:      t.Rate,
		Amount:    t.Amount,
		Inclusive: t.Inclusive,
	}
}

type entryResponse struct {
	ID              int64           `json:"id"`
	DebitAccountID  int64           `json:"debit_account_id,omitempty"`
	CreditAccountID int64           `json:"credit_account_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
}

type postedResponse struct {
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Existing      bool            `json:"existing"`
	Amount        decimal.Decimal `json:"amount"`
	Entries       []entryResponse `json:"entries"`
}

func toPostedResponse(p ledger.Posted) postedResponse {
	resp := postedResponse{
		TransactionID: p.Transaction.ID,
		Reference:     p.Transaction.Reference,
		Existing:      p.Existing,
		Amount:        p.Transaction.Amount,
	}
	for _, e := range p.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			ID:              e.ID,
			DebitAccountID:  e.DebitAccountID,
			CreditAccountID: e.CreditAccountID,
			Amount:          e.Amount,
			Description:     e.Description,
		})
	}
	return resp
}

func parseDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, model.Validationf(field, "must be set")
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, model.Validationf(field, "must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func (s *Server) handlePostExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference           string          `json:"reference"`
		Date                string          `json:"date"`
		Description         string          `json:"description"`
		Vendor              string          `json:"vendor"`
		ExpenseAccount      string          `json:"expense_account"`
		Amount              decimal.Decimal `json:"amount"`
		PaymentStatus       string          `json:"payment_status"`
		AmountPaid          decimal.Decimal `json:"amount_paid"`
		VendorInvoiceNumber string          `json:"vendor_invoice_number"`
		Tax                 taxRequest      `json:"tax"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(w, err)
		return
	}

	posted, err := s.posting.PostExpense(r.Context(), tenantID(r), posting.ExpenseParams{
		Reference:           req.Reference,
		Date:                date,
		Description:         req.Description,
		Vendor:              req.Vendor,
		ExpenseAccount:      req.ExpenseAccount,
		Amount:              req.Amount,
		Tax:                 req.Tax.settings(),
		PaymentStatus:       model.PaymentStatus(req.PaymentStatus),
		AmountPaid:          req.AmountPaid,
		VendorInvoiceNumber: req.VendorInvoiceNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observePosting("expense", posted.Existing)
	writeJSON(w, statusForPosted(posted), toPostedResponse(posted))
}

func (s *Server) handlePostInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference      string          `json:"reference"`
		Date           string          `json:"date"`
		Description    string          `json:"description"`
		Customer       string          `json:"customer"`
		RevenueAccount string          `json:"revenue_account"`
		Amount         decimal.Decimal `json:"amount"`
		PaymentStatus  string          `json:"payment_status"`
		AmountPaid     decimal.Decimal `json:"amount_paid"`
		InvoiceNumber  string          `json:"invoice_number"`
		Tax            taxRequest      `json:"tax"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(w, err)
		return
	}

	posted, err := s.posting.PostInvoice(r.Context(), tenantID(r), posting.InvoiceParams{
		Reference:      req.Reference,
		Date:           date,
		Description:    req.Description,
		Customer:       req.Customer,
		RevenueAccount: req.RevenueAccount,
		Amount:         req.Amount,
		Tax:            req.Tax.settings(),
		PaymentStatus:  model.PaymentStatus(req.PaymentStatus),
		AmountPaid:     req.AmountPaid,
		InvoiceNumber:  req.InvoiceNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observePosting("invoice", posted.Existing)
	writeJSON(w, statusForPosted(posted), toPostedResponse(posted))
}

func (s *Server) handlePostRevenue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference      string          `json:"reference"`
		Date           string          `json:"date"`
		Description    string          `json:"description"`
		Customer       string          `json:"customer"`
		RevenueAccount string          `json:"revenue_account"`
		Amount         decimal.Decimal `json:"amount"`
		PaymentStatus  string          `json:"payment_status"`
		AmountPaid     decimal.Decimal `json:"amount_paid"`
		Tax            taxRequest      `json:"tax"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(w, err)
		return
	}

	posted, err := s.posting.PostRevenue(r.Context(), tenantID(r), posting.RevenueParams{
		Reference:      req.Reference,
		Date:           date,
		Description:    req.Description,
		Customer:       req.Customer,
		RevenueAccount: req.RevenueAccount,
		Amount:         req.Amount,
		Tax:            req.Tax.settings(),
		PaymentStatus:  model.PaymentStatus(req.PaymentStatus),
		AmountPaid:     req.AmountPaid,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observePosting("revenue", posted.Existing)
	writeJSON(w, statusForPosted(posted), toPostedResponse(posted))
}

func statusForPosted(p ledger.Posted) int {
	if p.Existing {
		return http.StatusOK
	}
	return http.StatusCreated
}

func (s *Server) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AsOf string `json:"as_of"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	asOf, err := parseDate(req.AsOf, "as_of")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.closing.ClosePeriod(r.Context(), tenantID(r), asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Closed && !result.IsExisting {
		closingsTotal.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"is_existing":    result.IsExisting,
		"closed":         result.Closed,
		"transaction_id": result.TransactionID,
		"net_income":     result.NetIncome,
		"message":        result.Message,
	})
}

func (s *Server) handleVoid(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	posted, err := s.store.Void(r.Context(), tenantID(r), reference, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, statusForPosted(posted), toPostedResponse(posted))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	asOf := time.Now().UTC()
	if q := r.URL.Query().Get("as_of"); q != "" {
		var err error
		asOf, err = parseDate(q, "as_of")
		if err != nil {
			writeError(w, err)
			return
		}
	}

	balance, err := s.store.Balance(r.Context(), tenantID(r), code, asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": code,
		"as_of":   asOf.Format(dateFormat),
		"balance": balance,
	})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, model.Validationf("limit", "must be an integer, got %q", q))
			return
		}
		limit = n
	}

	entries, err := s.store.ListEntries(r.Context(), tenantID(r), code, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	type line struct {
		Date          string          `json:"date"`
		Reference     string          `json:"reference"`
		Description   string          `json:"description"`
		Debit         decimal.Decimal `json:"debit"`
		Credit        decimal.Decimal `json:"credit"`
		TransactionID string          `json:"transaction_id"`
	}
	lines := make([]line, 0, len(entries))
	for _, ae := range entries {
		l := line{
			Date:          ae.Date.Format(dateFormat),
			Reference:     ae.Reference,
			Description:   ae.Entry.Description,
			TransactionID: ae.Entry.TransactionID,
		}
		if ae.Entry.IsDebit() {
			l.Debit = ae.Entry.Amount
		} else {
			l.Credit = ae.Entry.Amount
		}
		lines = append(lines, l)
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := s.registry.List(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	acct, err := s.registry.Create(r.Context(), tenantID(r), req.Code, req.Name, model.AccountType(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name *string `json:"name"`
		Type *string `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var update accounts.UpdateParams
	update.Name = req.Name
	if req.Type != nil {
		t := model.AccountType(*req.Type)
		update.Type = &t
	}
	acct, err := s.registry.Update(r.Context(), tenantID(r), chi.URLParam(r, "code"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), tenantID(r), chi.URLParam(r, "code")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string          `json:"name"`
		Category         string          `json:"category"`
		UniqueKey        string          `json:"unique_key"`
		AcquisitionDate  string          `json:"acquisition_date"`
		InServiceDate    string          `json:"in_service_date"`
		Cost             decimal.Decimal `json:"cost"`
		ResidualValue    decimal.Decimal `json:"residual_value"`
		Method           string          `json:"method"`
		UsefulLifeMonths int             `json:"useful_life_months"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	inService, err := parseDate(req.InServiceDate, "in_service_date")
	if err != nil {
		writeError(w, err)
		return
	}
	var acquisition time.Time
	if req.AcquisitionDate != "" {
		acquisition, err = parseDate(req.AcquisitionDate, "acquisition_date")
		if err != nil {
			writeError(w, err)
			return
		}
	}

	asset, err := s.assets.Register(r.Context(), tenantID(r), assets.RegisterParams{
		Name:             req.Name,
		Category:         req.Category,
		UniqueKey:        req.UniqueKey,
		AcquisitionDate:  acquisition,
		InServiceDate:    inService,
		Cost:             req.Cost,
		ResidualValue:    req.ResidualValue,
		Method:           model.DepreciationMethod(req.Method),
		UsefulLifeMonths: req.UsefulLifeMonths,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := s.assets.List(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDisposeAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := s.assets.Dispose(r.Context(), tenantID(r), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleRunDepreciation(w http.ResponseWriter, r *http.Request) {
	result, err := s.assets.Run(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	depreciationEventsTotal.Add(float64(len(result.Posted)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, model.Validationf("limit", "must be an integer, got %q", q))
			return
		}
		limit = n
	}
	records, err := s.store.Audit(r.Context(), tenantID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
