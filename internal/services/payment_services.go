package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mt "TechMartAPI/external/midtrans"
	"TechMartAPI/internal/model"
	"TechMartAPI/internal/repository"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type PaymentService struct {
	PaymentRepo *repository.PaymentRepository
	OrderRepo   *repository.OrderRepository
	Snap        *snap.Client
	ServerKey   string
}

func NewPaymentService(
	pr *repository.PaymentRepository,
	or *repository.OrderRepository,
	snap *snap.Client,
	serverKey string,
) *PaymentService {
	return &PaymentService{
		PaymentRepo: pr,
		OrderRepo:   or,
		Snap:        snap,
		ServerKey:   serverKey,
	}
}

// CreateSnapPayment starts a midtrans snap transaction for the caller's
// own pending order and returns the redirect URL.
func (s *PaymentService) CreateSnapPayment(
	ctx context.Context,
	orderID int64,
	userID string,
) (string, error) {

	order, err := s.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", model.ErrOrderNotFound
	}

	if order.UserID != userID {
		return "", errors.New("forbidden")
	}

	if order.Status != model.OrderPendingPayment {
		return "", errors.New("order cannot be paid")
	}

	existing, err := s.PaymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.PaymentStatus == "Pending" {
		return "", errors.New("payment already exists")
	}

	externalRef := fmt.Sprintf("ORDER-%d-%s", orderID, uuid.NewString())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  externalRef,
			GrossAmt: int64(order.TotalAmount),
		},
	}

	resp, snapErr := s.Snap.CreateTransaction(req)
	if snapErr != nil {
		return "", snapErr
	}

	payload, _ := json.Marshal(resp)

	_, err = s.PaymentRepo.CreatePending(
		ctx,
		orderID,
		order.TotalAmount,
		"midtrans",
		externalRef,
		payload,
	)
	if err != nil {
		return "", err
	}

	return resp.RedirectURL, nil
}

// HandleNotification processes a midtrans server-to-server notification.
// Already-paid orders are ignored so redelivered notifications stay
// idempotent.
func (s *PaymentService) HandleNotification(ctx context.Context, payload map[string]interface{}) error {

	orderIDStr, ok := payload["order_id"].(string)
	if !ok {
		return errors.New("missing order_id")
	}

	// Extract internal order ID from ORDER-{id}-UUID
	var orderID int64
	if _, err := fmt.Sscanf(orderIDStr, "ORDER-%d-", &orderID); err != nil {
		return errors.New("invalid order reference")
	}

	order, err := s.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == model.OrderPaid {
		// already processed, safely ignore
		return nil
	}

	statusCode, _ := payload["status_code"].(string)
	grossAmount, _ := payload["gross_amount"].(string)
	signature, _ := payload["signature_key"].(string)

	if !mt.VerifySignature(
		orderIDStr,
		statusCode,
		grossAmount,
		signature,
		s.ServerKey,
	) {
		return errors.New("invalid signature")
	}

	transactionStatus, _ := payload["transaction_status"].(string)
	fraudStatus, _ := payload["fraud_status"].(string)

	switch transactionStatus {

	case "settlement":
		return s.finalizePayment(ctx, orderID, payload)

	case "capture":
		if fraudStatus == "accept" {
			return s.finalizePayment(ctx, orderID, payload)
		}

	case "expire", "cancel", "deny":
		return s.markPaymentFailed(ctx, orderID, payload)
	}

	return nil
}

func (s *PaymentService) finalizePayment(
	ctx context.Context,
	orderID int64,
	payload map[string]interface{},
) error {

	providerRef, _ := payload["transaction_id"].(string)

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	tx, err := s.PaymentRepo.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.PaymentRepo.MarkPaidTx(
		ctx,
		tx,
		orderID,
		"midtrans",
		providerRef,
		rawPayload,
	); err != nil {
		return err
	}

	if err := s.OrderRepo.MarkPaidTx(ctx, tx, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PaymentService) markPaymentFailed(
	ctx context.Context,
	orderID int64,
	payload map[string]interface{},
) error {

	// Idempotency guard
	order, err := s.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderPaid || order.Status == model.OrderFailed {
		return nil
	}

	data, _ := json.Marshal(payload)

	tx, err := s.PaymentRepo.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.OrderRepo.MarkFailedTx(ctx, tx, orderID); err != nil {
		return err
	}

	if err := s.PaymentRepo.MarkFailedTx(ctx, tx, orderID, data); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
