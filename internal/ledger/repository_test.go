package ledger

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pramrakhani/Mentor-Bridge/internal/metrics"
)

func setupLedgerMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func accountRows(id, userID, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(id, userID, balance, time.Now(), time.Now())
}

func TestGetBalance(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at")).
		WithArgs(int64(10)).
		WillReturnRows(accountRows(5, 10, 100))

	balance, err := repo.GetBalance(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)
}

func TestGetBalance_AccountNotFound(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBalance(context.Background(), 99)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDebit_LockUpdateInsert(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(20)).
		WillReturnRows(accountRows(7, 20, 80))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE token_accounts")).
		WithArgs(int64(50), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_transactions (account_id, amount, type, balance_after)")).
		WithArgs(int64(7), int64(-30), TxSessionPayment, int64(50)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	balance, err := repo.Debit(context.Background(), 20, 30, TxSessionPayment)
	require.NoError(t, err)
	require.Equal(t, int64(50), balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_InsufficientBalance(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(20)).
		WillReturnRows(accountRows(7, 20, 10))

	mock.ExpectRollback()

	_, err := repo.Debit(context.Background(), 20, 30, TxSessionPayment)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_RejectsNonPositiveTokens(t *testing.T) {
	repo, _, close := setupLedgerMock(t)
	defer close()

	_, err := repo.Debit(context.Background(), 20, 0, TxSessionPayment)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = repo.Debit(context.Background(), 20, -5, TxSessionPayment)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCredit_RejectsNonPositiveTokens(t *testing.T) {
	repo, _, close := setupLedgerMock(t)
	defer close()

	_, err := repo.Credit(context.Background(), 20, 0, TxAdminTopUp)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = repo.Credit(context.Background(), 20, -5, TxAdminTopUp)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCredit_UpdatesBalanceAndRecordsTransaction(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(30)).
		WillReturnRows(accountRows(8, 30, 40))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE token_accounts")).
		WithArgs(int64(65), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_transactions")).
		WithArgs(int64(8), int64(25), TxWithdrawalRefund, int64(65)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	balance, err := repo.Credit(context.Background(), 30, 25, TxWithdrawalRefund)
	require.NoError(t, err)
	require.Equal(t, int64(65), balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_RecordsTokenFlowAfterCommit(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	before := testutil.ToFloat64(metrics.TokensDebitedTotal.WithLabelValues(TxWithdrawalHold))

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(20)).
		WillReturnRows(accountRows(7, 20, 80))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE token_accounts")).
		WithArgs(int64(50), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_transactions")).
		WithArgs(int64(7), int64(-30), TxWithdrawalHold, int64(50)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	_, err := repo.Debit(context.Background(), 20, 30, TxWithdrawalHold)
	require.NoError(t, err)
	require.Equal(t, before+30, testutil.ToFloat64(metrics.TokensDebitedTotal.WithLabelValues(TxWithdrawalHold)))
}

func TestDebitTx_RollbackLeavesMetricsUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()
	repo := NewRepository(sqlxDB)

	before := testutil.ToFloat64(metrics.TokensDebitedTotal.WithLabelValues(TxWithdrawalHold))

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(20)).
		WillReturnRows(accountRows(7, 20, 80))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE token_accounts")).
		WithArgs(int64(50), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_transactions")).
		WithArgs(int64(7), int64(-30), TxWithdrawalHold, int64(50)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectRollback()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.DebitTx(context.Background(), tx, 20, 30, TxWithdrawalHold)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	// a rolled-back debit must not show up in the token-flow counters
	require.Equal(t, before, testutil.ToFloat64(metrics.TokensDebitedTotal.WithLabelValues(TxWithdrawalHold)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountTx_WithStartingGrant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()
	repo := NewRepository(sqlxDB)

	mock.ExpectBegin()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO token_accounts (user_id, balance)")).
		WithArgs(int64(42)).
		WillReturnRows(accountRows(9, 42, 0))

	// starting grant goes through the same locked read-modify-write path
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(42)).
		WillReturnRows(accountRows(9, 42, 0))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE token_accounts")).
		WithArgs(int64(100), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_transactions")).
		WithArgs(int64(9), int64(100), TxStartingGrant, int64(100)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	a, err := repo.CreateAccountTx(context.Background(), tx, 42, 100)
	require.NoError(t, err)
	require.Equal(t, int64(100), a.Balance)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
