// Package ofx exports ledger transactions as an OFX bank statement.
package ofx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxNameLength is the OFX limit for the NAME element.
const maxNameLength = 32

// Statement defaults.
const (
	DefaultBankID    = "SMSLEDGER"
	DefaultAccountID = "sms"
	DefaultCurrency  = "VND"
)

// StatementOptions describes the account the statement is written for.
type StatementOptions struct {
	Now           time.Time      // statement generation time; zero means time.Now()
	CategoryNames map[int]string // optional category ID -> name, written to MEMO
	BankID        string
	AccountID     string
	Currency      string
}

func (o *StatementOptions) applyDefaults() {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.BankID == "" {
		o.BankID = DefaultBankID
	}
	if o.AccountID == "" {
		o.AccountID = DefaultAccountID
	}
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
}

var okStatus = ofxgo.Status{Code: 0, Severity: "INFO"}

// BuildResponse assembles an OFX response holding one bank statement with
// every given transaction. Debits carry negative amounts.
func BuildResponse(txns []model.Transaction, opts StatementOptions) (*ofxgo.Response, error) {
	opts.applyDefaults()

	curDef, err := ofxgo.NewCurrSymbol(opts.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", opts.Currency, err)
	}

	list := &ofxgo.TransactionList{
		DtStart: ofxgo.Date{Time: opts.Now},
		DtEnd:   ofxgo.Date{Time: opts.Now},
	}
	balance := decimal.Zero

	for i := range txns {
		txn := &txns[i]
		tran, convErr := convertTransaction(txn, opts.CategoryNames)
		if convErr != nil {
			return nil, convErr
		}
		list.Transactions = append(list.Transactions, tran)
		balance = balance.Add(txn.SignedAmount())

		if i == 0 || txn.OccurredAt.Before(list.DtStart.Time) {
			list.DtStart = ofxgo.Date{Time: txn.OccurredAt}
		}
		if i == 0 || txn.OccurredAt.After(list.DtEnd.Time) {
			list.DtEnd = ofxgo.Date{Time: txn.OccurredAt}
		}
	}

	stmt := &ofxgo.StatementResponse{
		TrnUID: ofxgo.UID(uuid.NewString()),
		Status: okStatus,
		CurDef: *curDef,
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(opts.BankID),
			AcctID:   ofxgo.String(opts.AccountID),
			AcctType: ofxgo.AcctTypeChecking,
		},
		BankTranList: list,
		DtAsOf:       ofxgo.Date{Time: opts.Now},
	}
	if _, ok := stmt.BalAmt.SetString(balance.String()); !ok {
		return nil, fmt.Errorf("invalid balance %s", balance)
	}

	return &ofxgo.Response{
		Version: ofxgo.OfxVersion203,
		Signon: ofxgo.SignonResponse{
			Status:   okStatus,
			DtServer: ofxgo.Date{Time: opts.Now},
			Language: "ENG",
		},
		Bank: []ofxgo.Message{stmt},
	}, nil
}

func convertTransaction(txn *model.Transaction, categoryNames map[int]string) (ofxgo.Transaction, error) {
	if txn.ID == "" {
		return ofxgo.Transaction{}, errors.New("transaction without ID cannot be exported")
	}

	tran := ofxgo.Transaction{
		TrnType:  ofxgo.TrnTypeCredit,
		DtPosted: ofxgo.Date{Time: txn.OccurredAt},
		FiTID:    ofxgo.String(txn.ID),
		Name:     ofxgo.String(truncate(txn.Merchant, maxNameLength)),
		Memo:     ofxgo.String(memo(txn, categoryNames)),
	}
	if txn.Direction == model.DirectionDebit {
		tran.TrnType = ofxgo.TrnTypeDebit
	}
	if _, ok := tran.TrnAmt.SetString(txn.SignedAmount().String()); !ok {
		return ofxgo.Transaction{}, fmt.Errorf("transaction %s: invalid amount %s", txn.ID, txn.Amount)
	}
	return tran, nil
}

func memo(txn *model.Transaction, categoryNames map[int]string) string {
	m := txn.Dialect.DisplayName()
	if txn.CategoryID != nil {
		if name, ok := categoryNames[*txn.CategoryID]; ok {
			m += " / " + name
		}
	}
	return m
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// WriteStatement marshals the statement for txns to w.
func WriteStatement(w io.Writer, txns []model.Transaction, opts StatementOptions) error {
	resp, err := BuildResponse(txns, opts)
	if err != nil {
		return err
	}

	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal OFX: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write OFX: %w", err)
	}
	return nil
}
