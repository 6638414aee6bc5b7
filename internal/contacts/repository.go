package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("contact not found")

// Repository defines contact data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Contact, error)
	List(ctx context.Context, req ListContactsRequest) ([]Contact, int, error)
	Create(ctx context.Context, c Contact) (int64, error)
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, id int64) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const contactColumns = "id, name, kind, email, phone, address, tax_number, created_at, updated_at"

func (r *pgRepository) Get(ctx context.Context, id int64) (Contact, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = $1", id)
	return scanContact(row)
}

func (r *pgRepository) List(ctx context.Context, req ListContactsRequest) ([]Contact, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("(kind = $%d OR kind = 'BOTH')", argPos))
		args = append(args, string(req.Kind))
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	where := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contacts "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM contacts %s ORDER BY name LIMIT $%d OFFSET $%d",
		contactColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Create(ctx context.Context, c Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (name, kind, email, phone, address, tax_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.Name, string(c.Kind), c.Email, c.Phone, c.Address, c.TaxNumber).Scan(&id)
	return id, err
}

func (r *pgRepository) Update(ctx context.Context, c Contact) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET name = $2, kind = $3, email = $4, phone = $5, address = $6, tax_number = $7, updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Name, string(c.Kind), c.Email, c.Phone, c.Address, c.TaxNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	var kind string
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &kind, &c.Email, &c.Phone, &c.Address, &c.TaxNumber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	c.Kind = ContactKind(kind)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}
