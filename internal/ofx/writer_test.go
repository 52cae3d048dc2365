package ofx

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleTransactions() []model.Transaction {
	food := 1
	return []model.Transaction{
		{
			ID:         "a",
			OccurredAt: time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC),
			Amount:     decimal.NewFromInt(150000),
			Direction:  model.DirectionDebit,
			Merchant:   "STARBUCKS",
			Dialect:    model.DialectTechcombank,
			CategoryID: &food,
		},
		{
			ID:         "b",
			OccurredAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			Amount:     decimal.RequireFromString("12500000.5"),
			Direction:  model.DirectionCredit,
			Merchant:   "ACME CORP",
			Dialect:    model.DialectHSBC,
		},
	}
}

func TestBuildResponse(t *testing.T) {
	resp, err := BuildResponse(sampleTransactions(), StatementOptions{
		Now:           now,
		CategoryNames: map[int]string{1: "Food & Dining"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Bank, 1)

	stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	require.True(t, ok)
	assert.Equal(t, ofxgo.String(DefaultAccountID), stmt.BankAcctFrom.AcctID)
	assert.Equal(t, "VND", stmt.CurDef.String())

	require.NotNil(t, stmt.BankTranList)
	trans := stmt.BankTranList.Transactions
	require.Len(t, trans, 2)

	assert.Equal(t, ofxgo.TrnTypeDebit, trans[0].TrnType)
	assert.Equal(t, 0, trans[0].TrnAmt.Cmp(big.NewRat(-150000, 1)))
	assert.Equal(t, ofxgo.String("a"), trans[0].FiTID)
	assert.Equal(t, ofxgo.String("STARBUCKS"), trans[0].Name)
	assert.Equal(t, ofxgo.String("Techcombank / Food & Dining"), trans[0].Memo)

	assert.Equal(t, ofxgo.TrnTypeCredit, trans[1].TrnType)
	assert.Equal(t, 0, trans[1].TrnAmt.Cmp(big.NewRat(25000001, 2)))
	assert.Equal(t, ofxgo.String("HSBC"), trans[1].Memo)

	assert.True(t, stmt.BankTranList.DtStart.Time.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, stmt.BankTranList.DtEnd.Time.Equal(time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC)))
	assert.Equal(t, 0, stmt.BalAmt.Cmp(big.NewRat(24700001, 2)))
}

func TestBuildResponse_Errors(t *testing.T) {
	_, err := BuildResponse([]model.Transaction{{Merchant: "X"}}, StatementOptions{Now: now})
	assert.Error(t, err)

	_, err = BuildResponse(nil, StatementOptions{Now: now, Currency: "NOPE"})
	assert.Error(t, err)
}

func TestWriteStatement_ParsesBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatement(&buf, sampleTransactions(), StatementOptions{Now: now}))
	assert.Contains(t, buf.String(), "<STMTTRNRS>")

	resp, err := ofxgo.ParseResponse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, resp.Bank, 1)

	stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	require.True(t, ok)
	require.NotNil(t, stmt.BankTranList)
	require.Len(t, stmt.BankTranList.Transactions, 2)
	assert.Equal(t, ofxgo.String("a"), stmt.BankTranList.Transactions[0].FiTID)
	assert.Equal(t, ofxgo.String("ACME CORP"), stmt.BankTranList.Transactions[1].Name)
}

func TestWriteStatement_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatement(&buf, nil, StatementOptions{Now: now}))

	resp, err := ofxgo.ParseResponse(&buf)
	require.NoError(t, err)
	require.Len(t, resp.Bank, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 32))
	assert.Equal(t, "Phở", truncate("Phở Hà Nội", 3))
}
