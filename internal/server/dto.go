package server

import (
	"time"

	"github.com/spendlens/spendlens/internal/buildinfo"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/model"
)

type healthResponse struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	Build   buildinfo.Info `json:"build"`
}

type importResponse struct {
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Message    string `json:"message"`
}

type importerResponse struct {
	Code               string   `json:"code"`
	Name               string   `json:"name"`
	SupportedFileTypes []string `json:"supportedFileTypes"`
}

func toImporterResponse(imp importer.Importer) importerResponse {
	return importerResponse{Code: imp.Code(), Name: imp.Name(), SupportedFileTypes: imp.SupportedFileTypes()}
}

type transactionResponse struct {
	ID                  int64     `json:"id"`
	AccountNumber       string    `json:"accountNumber"`
	TransactionDate     string    `json:"transactionDate"`
	Description1        string    `json:"description1"`
	Description2        string    `json:"description2,omitempty"`
	Description3        string    `json:"description3,omitempty"`
	DebitAmount         string    `json:"debitAmount,omitempty"`
	CreditAmount        string    `json:"creditAmount,omitempty"`
	Balance             string    `json:"balance,omitempty"`
	Currency            string    `json:"currency,omitempty"`
	TransactionType     string    `json:"transactionType,omitempty"`
	LocalCurrencyAmount string    `json:"localCurrencyAmount,omitempty"`
	LocalCurrency       string    `json:"localCurrency,omitempty"`
	GroupingStatus      string    `json:"groupingStatus"`
	CategoryID          *int64    `json:"categoryId"`
	CreatedAt           time.Time `json:"createdAt"`
}

func toTransactionResponse(tx model.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                  tx.ID,
		AccountNumber:       tx.AccountNumber,
		TransactionDate:     tx.TransactionDate,
		Description1:        tx.Description1,
		Description2:        tx.Description2,
		Description3:        tx.Description3,
		DebitAmount:         tx.DebitAmount,
		CreditAmount:        tx.CreditAmount,
		Balance:             tx.Balance,
		Currency:            tx.Currency,
		TransactionType:     tx.TransactionType,
		LocalCurrencyAmount: tx.LocalCurrencyAmount,
		LocalCurrency:       tx.LocalCurrency,
		GroupingStatus:      string(tx.Status()),
		CreatedAt:           tx.CreatedAt,
	}
	if tx.CategoryID != 0 {
		id := tx.CategoryID
		resp.CategoryID = &id
	}
	return resp
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ParentID    *int64 `json:"parentId"`
	Description string `json:"description,omitempty"`
}

func toCategoryResponse(c model.Category) categoryResponse {
	resp := categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
	if !c.IsTopLevel() {
		id := c.ParentID
		resp.ParentID = &id
	}
	return resp
}

type patternRequest struct {
	PatternType      string  `json:"patternType"`
	PatternValue     string  `json:"patternValue"`
	CategoryID       int64   `json:"categoryId"`
	ParentCategoryID int64   `json:"parentCategoryId"`
	ConfidenceScore  float64 `json:"confidenceScore"`
}

type patternResponse struct {
	ID               int64   `json:"id"`
	PatternType      string  `json:"patternType"`
	PatternValue     string  `json:"patternValue"`
	CategoryID       int64   `json:"categoryId,omitempty"`
	ParentCategoryID int64   `json:"parentCategoryId,omitempty"`
	ConfidenceScore  float64 `json:"confidenceScore"`
	UsageCount       int     `json:"usageCount"`
}

func toPatternResponse(p model.SimilarityPattern) patternResponse {
	return patternResponse{
		ID:               p.ID,
		PatternType:      string(p.PatternType),
		PatternValue:     p.PatternValue,
		CategoryID:       p.CategoryID,
		ParentCategoryID: p.ParentCategoryID,
		ConfidenceScore:  p.ConfidenceScore,
		UsageCount:       p.UsageCount,
	}
}

type patternTestRequest struct {
	Description string `json:"description"`
}

type patternTestResponse struct {
	Matched bool             `json:"matched"`
	Pattern *patternResponse `json:"pattern,omitempty"`
}

type setCategoryRequest struct {
	CategoryID int64 `json:"categoryId"`
}
