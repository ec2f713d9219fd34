package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/models"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewRepo(gdb), mock
}

func TestTransitionBorrowingUnknownAction(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.TransitionBorrowing(context.Background(), "b1", "actor", models.BorrowingAction("CANCEL"), nil)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
}

func TestTransitionBorrowingWrongPredecessor(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "REJECTED"))
	mock.ExpectRollback()

	_, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReject, nil)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	require.Equal(t, models.StatusRejected, ite.Current)
	require.Contains(t, ite.Error(), "only PENDING")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingApproveInsufficientStock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "PENDING"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectQuery(`SELECT \* FROM "lab_chemicals" WHERE id = .+ FOR UPDATE`).
		WithArgs("c1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "current_stock"}).
			AddRow("c1", "Aceton", 2.0))
	mock.ExpectRollback()

	_, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionApprove, nil)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Equal(t, "c1", ise.ChemicalID)
	require.Equal(t, 2.0, ise.Available)
	require.Equal(t, 5.0, ise.Requested)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingApprove(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "PENDING"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectQuery(`SELECT \* FROM "lab_chemicals" WHERE id = .+ FOR UPDATE`).
		WithArgs("c1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "current_stock"}).
			AddRow("c1", "Aceton", 10.0))
	mock.ExpectExec(`UPDATE "lab_chemicals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "lab_usage_history"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lab_borrowings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = `).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE "lab_borrowing_items"\."borrowing_id" = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectCommit()

	res, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionApprove, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, res.Borrowing.Status)
	require.Len(t, res.Usage, 1)
	require.Equal(t, 5.0, res.Usage[0].Quantity)
	require.Equal(t, "c1", res.Usage[0].ChemicalID)
	require.Equal(t, "u1", res.Usage[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingReturnFull(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectQuery(`SELECT \* FROM "lab_chemicals" WHERE id = .+ FOR UPDATE`).
		WithArgs("c1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "current_stock"}).
			AddRow("c1", "Aceton", 5.0))
	mock.ExpectExec(`UPDATE "lab_chemicals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lab_borrowing_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 全部归还：不应有任何台账插入
	mock.ExpectExec(`UPDATE "lab_borrowings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = `).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "RETURNED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE "lab_borrowing_items"\."borrowing_id" = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity", "returned", "returned_qty"}).
			AddRow("i1", "b1", "c1", 5.0, true, 5.0))
	mock.ExpectCommit()

	res, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReturn,
		[]ReturnedItem{{ID: "i1", ReturnedQty: 5}})
	require.NoError(t, err)
	require.Equal(t, models.StatusReturned, res.Borrowing.Status)
	require.Empty(t, res.Usage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingReturnPartialWritesRemainder(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectQuery(`SELECT \* FROM "lab_chemicals" WHERE id = .+ FOR UPDATE`).
		WithArgs("c1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "current_stock"}).
			AddRow("c1", "Aceton", 2.0))
	mock.ExpectExec(`UPDATE "lab_chemicals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lab_borrowing_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "lab_usage_history"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lab_borrowings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = `).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "RETURNED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE "lab_borrowing_items"\."borrowing_id" = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity", "returned", "returned_qty"}).
			AddRow("i1", "b1", "c1", 5.0, true, 2.0))
	mock.ExpectCommit()

	res, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReturn,
		[]ReturnedItem{{ID: "i1", ReturnedQty: 2}})
	require.NoError(t, err)
	require.Equal(t, models.StatusReturned, res.Borrowing.Status)
	require.Len(t, res.Usage, 1)
	require.Equal(t, 3.0, res.Usage[0].Quantity)
	require.Equal(t, "c1", res.Usage[0].ChemicalID)
	require.Equal(t, "u1", res.Usage[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingReturnRejectsOmittedItem(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0).
			AddRow("i2", "b1", "c2", 3.0))
	mock.ExpectRollback()

	// 只确认了 i1，i2 没出现在归还单里：整单回滚，不写任何库存或台账
	_, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReturn,
		[]ReturnedItem{{ID: "i1", ReturnedQty: 5}})
	var rie *ReturnItemError
	require.ErrorAs(t, err, &rie)
	require.Equal(t, "i2", rie.ItemID)
	require.Contains(t, rie.Error(), "missing from return payload")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingReturnRejectsBadQty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectRollback()

	_, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReturn,
		[]ReturnedItem{{ID: "i1", ReturnedQty: 6}})
	var rie *ReturnItemError
	require.ErrorAs(t, err, &rie)
	require.Equal(t, "i1", rie.ItemID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionBorrowingReturnUnknownItem(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowings" WHERE id = .+ FOR UPDATE`).
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrower_id", "status"}).
			AddRow("b1", "u1", "APPROVED"))
	mock.ExpectQuery(`SELECT \* FROM "lab_borrowing_items" WHERE borrowing_id = `).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "borrowing_id", "chemical_id", "quantity"}).
			AddRow("i1", "b1", "c1", 5.0))
	mock.ExpectRollback()

	_, err := repo.TransitionBorrowing(context.Background(), "b1", "staff", models.ActionReturn,
		[]ReturnedItem{{ID: "nope", ReturnedQty: 1}})
	var rie *ReturnItemError
	require.ErrorAs(t, err, &rie)
	require.Contains(t, rie.Error(), "does not belong")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBorrowingRequiresItems(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.CreateBorrowing(context.Background(), "u1", "practicum", nil)
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestCreateBorrowingRejectsDuplicateChemical(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.CreateBorrowing(context.Background(), "u1", "practicum", []NewBorrowingItem{
		{ChemicalID: "c1", Quantity: 2},
		{ChemicalID: "c1", Quantity: 3},
	})
	require.ErrorIs(t, err, ErrDuplicateItem)
}
