package repo

import (
	"context"
	"errors"
	"time"

	"payflow/internal/database"
	"payflow/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")
)

type PaymentRepo interface {
	// CreateOrGet inserts the payment unless its reference already
	// exists, in which case p is overwritten with the stored row.
	// The returned flag is true only for the insert that won.
	CreateOrGet(ctx context.Context, p *domain.Payment) (created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// CompareAndSetStatus is the sole mutation path. It commits the
	// transition only when the current status equals expected;
	// otherwise it returns ErrPaymentAlreadyProcessed.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next domain.Status, reason domain.Reason) error
	// FindStalePending returns payments sitting PENDING since before
	// the staleness window, oldest first.
	FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Payment, error)
}

type paymentRepo struct {
	db *database.DB
}

func NewPaymentRepo(db *database.DB) PaymentRepo {
	return &paymentRepo{db: db}
}

const paymentColumns = "id, reference, amount_cents, currency, status, reason, created_at, updated_at"

func (r *paymentRepo) CreateOrGet(ctx context.Context, p *domain.Payment) (bool, error) {
	query := r.db.QueryBuilder.Insert("payments").
		Columns("reference", "amount_cents", "currency", "status", "created_at", "updated_at").
		Values(p.Reference, p.AmountCents, p.Currency, p.Status, p.CreatedAt, p.UpdatedAt).
		Suffix("ON CONFLICT (reference) DO NOTHING RETURNING id, created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// Lost the race (or plain replay): the reference row already
	// exists, return it unchanged.
	existing, err := r.findByReference(ctx, p.Reference)
	if err != nil {
		return false, err
	}
	*p = *existing

	return false, nil
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := r.db.QueryBuilder.Select(paymentColumns).
		From("payments").
		Where("id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanOne(ctx, sql, args)
}

func (r *paymentRepo) findByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := r.db.QueryBuilder.Select(paymentColumns).
		From("payments").
		Where("reference = ?", reference)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanOne(ctx, sql, args)
}

func (r *paymentRepo) scanOne(ctx context.Context, sql string, args []any) (*domain.Payment, error) {
	var (
		p      domain.Payment
		reason *string
	)
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID,
		&p.Reference,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&reason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if reason != nil {
		rs := domain.Reason(*reason)
		p.Reason = &rs
	}

	return &p, nil
}

func (r *paymentRepo) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next domain.Status, reason domain.Reason) error {
	query := r.db.QueryBuilder.Update("payments").
		Set("status", next).
		Set("updated_at", time.Now()).
		Where("id = ?", id).
		Where("status = ?", expected)

	if reason != "" {
		query = query.Set("reason", string(reason))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row matched: either the payment is unknown or another worker
	// already committed a transition.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrPaymentAlreadyProcessed
}

func (r *paymentRepo) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Payment, error) {
	query := r.db.QueryBuilder.Select(paymentColumns).
		From("payments").
		Where("status = ?", domain.StatusPending).
		Where("updated_at < ?", time.Now().Add(-olderThan)).
		OrderBy("updated_at ASC").
		Limit(uint64(limit))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			reason *string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Reference,
			&p.AmountCents,
			&p.Currency,
			&p.Status,
			&reason,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if reason != nil {
			rs := domain.Reason(*reason)
			p.Reason = &rs
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
