package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/recon_backend/models"
	"github.com/shopspring/decimal"
)

// VoucherDetails is what a match needs to know about a voucher: identity,
// reference metadata and the amount the match would consume.
type VoucherDetails struct {
	Type            models.VoucherType `json:"type"`
	Id              int                `json:"id"`
	ReferenceNumber string             `json:"reference_number"`
	PostingDate     time.Time          `json:"posting_date"`
	Amount          decimal.Decimal    `json:"amount"`
}

// LookupVoucher resolves a voucher by variant and id. The amount rules live
// on the models so they stay testable without a DB:
// payment entries use the after-tax base amount when present, journal entries
// the balance of their bank-typed line.
func LookupVoucher(ctx context.Context, voucherType models.VoucherType, id int) (*VoucherDetails, error) {
	switch voucherType {
	case models.VoucherTypePaymentEntry:
		pe, err := models.GetPaymentEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		return &VoucherDetails{
			Type:            models.VoucherTypePaymentEntry,
			Id:              pe.ID,
			ReferenceNumber: pe.ReferenceNumber,
			PostingDate:     pe.PostingDate,
			Amount:          pe.MatchableAmount(),
		}, nil
	case models.VoucherTypeJournalEntry:
		je, err := models.GetJournalEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		return &VoucherDetails{
			Type:            models.VoucherTypeJournalEntry,
			Id:              je.ID,
			ReferenceNumber: je.ChequeNumber,
			PostingDate:     je.PostingDate,
			Amount:          je.MatchableAmount(),
		}, nil
	default:
		_, err := models.ParseVoucherType(string(voucherType))
		return nil, err
	}
}
