package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
)

type ComplaintRepository struct {
	pool *pgxpool.Pool
}

func NewComplaintRepository(pool *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, status, severity, reported_by, attachment_url, created_at, updated_at`

func scanComplaint(row pgx.Row) (*entity.Complaint, error) {
	c := &entity.Complaint{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Status, &c.Severity, &c.ReportedBy,
		&c.AttachmentURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, rowErr(err)
	}
	return c, nil
}

func (r *ComplaintRepository) Create(ctx context.Context, c *entity.Complaint) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO complaints (title, description, status, severity, reported_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.Title, c.Description, c.Status, c.Severity, c.ReportedBy)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
}

func (r *ComplaintRepository) List(ctx context.Context, f repository.ComplaintFilter) ([]entity.Complaint, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		where = append(where, "severity = $"+strconv.Itoa(len(args)))
	}
	q := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Complaint, 0, f.Limit)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, status entity.ComplaintStatus) (*entity.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx, `
		UPDATE complaints SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+complaintColumns, status, id))
}

func (r *ComplaintRepository) SetAttachment(ctx context.Context, id, url string) error {
	res, err := r.pool.Exec(ctx, `UPDATE complaints SET attachment_url = $1, updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		return rowErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ComplaintRepository = (*ComplaintRepository)(nil)
