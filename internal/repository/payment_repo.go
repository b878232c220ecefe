package repository

import (
	"context"
	"errors"

	"TechMartAPI/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) CreatePending(
	ctx context.Context,
	orderID int64,
	amount float64,
	provider string,
	providerRef string,
	payload []byte,
) (int64, error) {

	var paymentID int64
	q := `
		INSERT INTO payments
			(orderid, amountpaid, paymentstatus, paymentprovider, providerref, providerpayload, createdat)
		VALUES
			($1, $2, 'Pending', $3, $4, $5, NOW())
		RETURNING paymentid
	`
	err := r.DB.QueryRow(
		ctx, q,
		orderID, amount, provider, providerRef, payload,
	).Scan(&paymentID)

	return paymentID, err
}

func (r *PaymentRepository) GetByOrderID(
	ctx context.Context,
	orderID int64,
) (*model.Payment, error) {

	var p model.Payment

	q := `
		SELECT paymentid, orderid, amountpaid, paymentstatus,
		       paymentprovider, providerref, providerpayload,
		       createdat, paidat
		FROM payments
		WHERE orderid=$1
	`

	err := r.DB.QueryRow(ctx, q, orderID).Scan(
		&p.PaymentID,
		&p.OrderID,
		&p.AmountPaid,
		&p.PaymentStatus,
		&p.PaymentProvider,
		&p.ProviderRef,
		&p.ProviderPayload,
		&p.CreatedAt,
		&p.PaidAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

func (r *PaymentRepository) MarkPaidTx(
	ctx context.Context,
	tx pgx.Tx,
	orderID int64,
	provider string,
	providerRef string,
	payload []byte,
) error {

	_, err := tx.Exec(ctx, `
		UPDATE payments
		SET paymentstatus='Paid',
		    paymentprovider=$2,
		    providerref=$3,
		    providerpayload=$4,
		    paidat=NOW()
		WHERE orderid=$1 AND paymentstatus='Pending'
	`, orderID, provider, providerRef, payload)

	return err
}

func (r *PaymentRepository) MarkFailedTx(
	ctx context.Context,
	tx pgx.Tx,
	orderID int64,
	payload []byte,
) error {
	_, err := tx.Exec(ctx, `
		UPDATE payments
		SET paymentstatus='Failed',
		    providerpayload=$2
		WHERE orderid=$1
		  AND paymentstatus='Pending'
	`, orderID, payload)
	return err
}
