package services

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimarket/models"
)

const (
	selectBalanceSQL      = "SELECT loyalty_points FROM opticians WHERE id = ?"
	selectLoyaltyProdSQL  = "SELECT lp.id, lp.name, lp.image_url, lp.points_cost, lp.is_active, lp.product_id, p.in_stock FROM loyalty_products lp LEFT JOIN products p ON lp.product_id = p.id WHERE lp.id = ?"
	insertRedemptionSQL   = "INSERT INTO loyalty_redemptions (optician_id, total_points, status, created_at) VALUES (?, ?, ?, ?)"
	insertRedemptionLines = "INSERT INTO loyalty_redemption_items (redemption_id, loyalty_product_id, product_name, image_url, quantity, points_cost, total_points) VALUES (?, ?, ?, ?, ?, ?, ?)"
	selectRedemptionSQL   = "SELECT optician_id, total_points, status FROM loyalty_redemptions WHERE id = ? FOR UPDATE"
	selectStockRecheckSQL = "SELECT ri.quantity, lp.is_active, lp.product_id, p.stock_qty FROM loyalty_redemption_items ri JOIN loyalty_products lp ON ri.loyalty_product_id = lp.id LEFT JOIN products p ON lp.product_id = p.id WHERE ri.redemption_id = ? FOR UPDATE"
	deductPointsSQL       = "UPDATE opticians SET loyalty_points = loyalty_points - ? WHERE id = ? AND loyalty_points >= ?"
	approveRedemptionSQL  = "UPDATE loyalty_redemptions SET status = ?, approved_at = ?, approved_by = ? WHERE id = ? AND status = ?"
	rejectRedemptionSQL   = "UPDATE loyalty_redemptions SET status = ?, rejected_at = ?, approved_by = ?, rejection_reason = ? WHERE id = ? AND status = ?"
)

// Optician with 500 points redeems two items worth 150 and 100 points:
// the redemption is created PENDING with a server-computed total of 250
// and the balance is not touched.
func TestCreateRedemptionPendingWithoutDeduction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"loyalty_points"}).AddRow(500))
	mock.ExpectQuery(regexp.QuoteMeta(selectLoyaltyProdSQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image_url", "points_cost", "is_active", "product_id", "in_stock"}).
			AddRow(1, "Cleaning kit", "", 150, true, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta(selectLoyaltyProdSQL)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image_url", "points_cost", "is_active", "product_id", "in_stock"}).
			AddRow(2, "Lens cloth pack", "", 100, true, 9, true))
	mock.ExpectExec(regexp.QuoteMeta(insertRedemptionSQL)).
		WithArgs(int64(7), 250, models.RedemptionPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertRedemptionLines)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertRedemptionLines)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	redemption, err := CreateRedemption(db, 7, []models.RedemptionLine{
		{LoyaltyProductID: 1, Quantity: 1},
		{LoyaltyProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), redemption.ID)
	assert.Equal(t, models.RedemptionPending, redemption.Status)
	assert.Equal(t, 250, redemption.TotalPoints)
	assert.Len(t, redemption.Items, 2)
	assert.Equal(t, 150, redemption.Items[0].TotalPoints)

	// No UPDATE on opticians was expected: a deduction here would have
	// failed the mock.
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Balance 100 against a 250-point request: rejected before anything is
// written.
func TestCreateRedemptionInsufficientPoints(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"loyalty_points"}).AddRow(100))
	mock.ExpectQuery(regexp.QuoteMeta(selectLoyaltyProdSQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image_url", "points_cost", "is_active", "product_id", "in_stock"}).
			AddRow(1, "Cleaning kit", "", 250, true, nil, nil))
	mock.ExpectRollback()

	_, err = CreateRedemption(db, 7, []models.RedemptionLine{{LoyaltyProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRedemptionInactiveProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectBalanceSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"loyalty_points"}).AddRow(500))
	mock.ExpectQuery(regexp.QuoteMeta(selectLoyaltyProdSQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image_url", "points_cost", "is_active", "product_id", "in_stock"}).
			AddRow(1, "Retired reward", "", 100, false, nil, nil))
	mock.ExpectRollback()

	_, err = CreateRedemption(db, 7, []models.RedemptionLine{{LoyaltyProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRedemptionRejectsNonPositiveQuantity(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = CreateRedemption(db, 7, []models.RedemptionLine{{LoyaltyProductID: 1, Quantity: 0}})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = CreateRedemption(db, 7, nil)
	assert.ErrorAs(t, err, &validationErr)
}

// Approving the pending 250-point redemption deducts the points and
// flips the status in one transaction.
func TestApproveRedemption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "PENDING"))
	mock.ExpectQuery(regexp.QuoteMeta(selectStockRecheckSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "is_active", "product_id", "stock_qty"}).
			AddRow(1, true, 9, 4).
			AddRow(1, true, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(deductPointsSQL)).
		WithArgs(250, int64(7), 250).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(approveRedemptionSQL)).
		WithArgs(models.RedemptionApproved, sqlmock.AnyArg(), int64(99), int64(42), models.RedemptionPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	redemption, err := ApproveRedemption(db, 42, 99)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionApproved, redemption.Status)
	assert.NotNil(t, redemption.ApprovedAt)
	require.NotNil(t, redemption.ApprovedBy)
	assert.Equal(t, int64(99), *redemption.ApprovedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A terminal redemption cannot be approved again and nothing is written.
func TestApproveRedemptionAlreadyProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "APPROVED"))
	mock.ExpectRollback()

	_, err = ApproveRedemption(db, 42, 99)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// If the live stock re-check fails, the transaction rolls back: neither
// the balance nor the status is touched.
func TestApproveRedemptionStockRecheckAtomicity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "PENDING"))
	mock.ExpectQuery(regexp.QuoteMeta(selectStockRecheckSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "is_active", "product_id", "stock_qty"}).
			AddRow(2, true, 9, 0))
	mock.ExpectRollback()

	_, err = ApproveRedemption(db, 42, 99)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The balance may have shrunk between creation and approval; the guard
// in the UPDATE predicate fails the approval instead of going negative.
func TestApproveRedemptionBalanceShrank(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "PENDING"))
	mock.ExpectQuery(regexp.QuoteMeta(selectStockRecheckSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "is_active", "product_id", "stock_qty"}).
			AddRow(1, true, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(deductPointsSQL)).
		WithArgs(250, int64(7), 250).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = ApproveRedemption(db, 42, 99)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRedemption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "PENDING"))
	mock.ExpectExec(regexp.QuoteMeta(rejectRedemptionSQL)).
		WithArgs(models.RedemptionRejected, sqlmock.AnyArg(), int64(99), "Rejected by administrator", int64(42), models.RedemptionPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	redemption, err := RejectRedemption(db, 42, 99, "")
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionRejected, redemption.Status)
	assert.Equal(t, "Rejected by administrator", redemption.RejectionReason)
	assert.NotNil(t, redemption.RejectedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRedemptionAlreadyProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}).
			AddRow(7, 250, "REJECTED"))
	mock.ExpectRollback()

	_, err = RejectRedemption(db, 42, 99, "late")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRedemptionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRedemptionSQL)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"optician_id", "total_points", "status"}))
	mock.ExpectRollback()

	_, err = ApproveRedemption(db, 404, 99)
	assert.ErrorIs(t, err, ErrRedemptionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
