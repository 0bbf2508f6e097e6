package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByReference(ctx context.Context, reference entity.BookingReference) (*entity.Payment, error)

	// Business queries
	TransitionStatus(ctx context.Context, reference entity.BookingReference, from, to entity.PaymentStatus, transactionID *string) (bool, error)
	DeleteByReferences(ctx context.Context, references []entity.BookingReference) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_reference, amount_cents, currency, checkout_url,
	transaction_id, status, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		payment.ID,
		payment.BookingReference.String(),
		payment.Amount.Cents(),
		payment.Currency,
		payment.CheckoutURL,
		payment.TransactionID,
		string(payment.Status),
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("payment for %s: %w", payment.BookingReference, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_reference", payment.BookingReference.String()),
		)
		return fmt.Errorf("create payment for %s: %w", payment.BookingReference, err)
	}

	return nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference entity.BookingReference) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_reference = $1`

	var payment entity.Payment
	err := conn(ctx, r.db).QueryRow(ctx, query, reference.String()).Scan(
		&payment.ID,
		&payment.BookingReference,
		&payment.Amount,
		&payment.Currency,
		&payment.CheckoutURL,
		&payment.TransactionID,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by reference",
			zap.Error(err),
			zap.String("booking_reference", reference.String()),
		)
		return nil, fmt.Errorf("find payment by reference %s: %w", reference, err)
	}

	return &payment, nil
}

// TransitionStatus is a compare-and-set on the payment status; the
// transaction id is only overwritten when a new one is given.
func (r *paymentRepository) TransitionStatus(ctx context.Context, reference entity.BookingReference, from, to entity.PaymentStatus, transactionID *string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $3, transaction_id = COALESCE($4, transaction_id), updated_at = NOW()
		WHERE booking_reference = $1 AND status = $2
	`

	result, err := conn(ctx, r.db).Exec(ctx, query, reference.String(), string(from), string(to), transactionID)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("booking_reference", reference.String()),
			zap.String("status", string(to)),
		)
		return false, fmt.Errorf("update payment %s status to %s: %w", reference, string(to), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *paymentRepository) DeleteByReferences(ctx context.Context, references []entity.BookingReference) error {
	if len(references) == 0 {
		return nil
	}

	refs := make([]string, len(references))
	for i, ref := range references {
		refs[i] = ref.String()
	}

	if _, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM payments WHERE booking_reference = ANY($1)`, refs); err != nil {
		r.log.Error("Failed to delete payments", zap.Error(err), zap.Int("count", len(refs)))
		return fmt.Errorf("delete payments: %w", err)
	}

	return nil
}
