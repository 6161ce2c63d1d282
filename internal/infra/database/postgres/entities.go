package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

var _ domain.EntityRepo = (*PGRepo)(nil)

var entityColumns = []string{"id", "collection", "payload", "media", "ord", "created_at", "updated_at"}

func scanEntity(row pgx.Row) (domain.Entity, error) {
	var (
		e          domain.Entity
		rawPayload []byte
		rawMedia   []byte
	)
	if err := row.Scan(&e.ID, &e.Collection, &rawPayload, &rawMedia, &e.Ord, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return domain.Entity{}, err
	}
	if len(rawPayload) > 0 {
		if err := json.Unmarshal(rawPayload, &e.Payload); err != nil {
			return domain.Entity{}, fmt.Errorf("payload unmarshal: %w", err)
		}
	}
	if e.Payload == nil {
		e.Payload = domain.Payload{}
	}
	if len(rawMedia) > 0 {
		if err := json.Unmarshal(rawMedia, &e.Media); err != nil {
			return domain.Entity{}, fmt.Errorf("media unmarshal: %w", err)
		}
	}
	return e, nil
}

func marshalEntity(e domain.Entity) (payload, media []byte, err error) {
	if e.Payload == nil {
		e.Payload = domain.Payload{}
	}
	payload, err = json.Marshal(e.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("payload marshal: %w", err)
	}
	if e.Media == nil {
		e.Media = []domain.MediaRef{}
	}
	media, err = json.Marshal(e.Media)
	if err != nil {
		return nil, nil, fmt.Errorf("media marshal: %w", err)
	}
	return payload, media, nil
}

func (r *PGRepo) Create(ctx context.Context, e domain.Entity) (domain.Entity, error) {
	payload, media, err := marshalEntity(e)
	if err != nil {
		return domain.Entity{}, err
	}

	q := r.qb().Insert(r.table()).
		Columns("collection", "payload", "media", "ord").
		Values(e.Collection, payload, media, e.Ord).
		Suffix("RETURNING " + columnsCSV())

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Create", sqlStr, args)

	start := time.Now()
	out, err := scanEntity(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("Create scan error after %s: %v", time.Since(start), err)
		return domain.Entity{}, err
	}
	r.logger.Printf("Create ok in %s collection=%s id=%s", time.Since(start), out.Collection, out.ID)
	return out, nil
}

func (r *PGRepo) ByID(ctx context.Context, collection string, id domain.EntityID) (domain.Entity, error) {
	q := r.qb().Select(entityColumns...).
		From(r.table()).
		Where(sq.And{sq.Eq{"collection": collection}, sq.Eq{"id": id}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ByID", sqlStr, args)

	start := time.Now()
	out, err := scanEntity(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, domain.ErrNotFound
		}
		r.logger.Printf("ByID scan error after %s: %v", time.Since(start), err)
		return domain.Entity{}, err
	}
	return out, nil
}

func (r *PGRepo) Update(ctx context.Context, e domain.Entity) (domain.Entity, error) {
	payload, media, err := marshalEntity(e)
	if err != nil {
		return domain.Entity{}, err
	}

	q := r.qb().Update(r.table()).
		Set("payload", payload).
		Set("media", media).
		Set("ord", e.Ord).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"collection": e.Collection}, sq.Eq{"id": e.ID}}).
		Suffix("RETURNING " + columnsCSV())

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Update", sqlStr, args)

	start := time.Now()
	out, err := scanEntity(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, domain.ErrNotFound
		}
		r.logger.Printf("Update scan error after %s: %v", time.Since(start), err)
		return domain.Entity{}, err
	}
	r.logger.Printf("Update ok in %s collection=%s id=%s", time.Since(start), out.Collection, out.ID)
	return out, nil
}

func (r *PGRepo) Delete(ctx context.Context, collection string, id domain.EntityID) error {
	q := r.qb().Delete(r.table()).
		Where(sq.And{sq.Eq{"collection": collection}, sq.Eq{"id": id}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Delete", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("Delete exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("Delete ok in %s collection=%s id=%s", time.Since(start), collection, id)
	return nil
}

func (r *PGRepo) List(ctx context.Context, d domain.Descriptor, f domain.ListFilter) ([]domain.Entity, error) {
	sb := r.qb().Select(entityColumns...).
		From(r.table()).
		Where(sq.Eq{"collection": d.Collection})

	// Фильтры по полям payload (белый список из дескриптора).
	// ->> текстовое сравнение покрывает и строки, и булевы флаги ("true").
	for _, field := range d.Filters {
		if v, ok := f[field]; ok && v != "" {
			sb = sb.Where(sq.Expr("payload->>? = ?", field, v))
		}
	}

	switch d.Order {
	case domain.OrderExplicitAsc:
		sb = sb.OrderBy("ord ASC NULLS LAST", "created_at ASC")
	default:
		sb = sb.OrderBy("created_at DESC")
	}

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("List", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("List query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entity, 0, 16)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("List ok in %s collection=%s rows=%d", time.Since(start), d.Collection, len(out))
	return out, nil
}

// Newest — последний созданный документ коллекции (singleton linkedin)
func (r *PGRepo) Newest(ctx context.Context, collection string) (domain.Entity, error) {
	q := r.qb().Select(entityColumns...).
		From(r.table()).
		Where(sq.Eq{"collection": collection}).
		OrderBy("created_at DESC").
		Limit(1)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Newest", sqlStr, args)

	out, err := scanEntity(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, domain.ErrNotFound
		}
		return domain.Entity{}, err
	}
	return out, nil
}

func (r *PGRepo) Distinct(ctx context.Context, collection, field string) ([]string, error) {
	q := r.qb().Select().
		Column(sq.Expr("DISTINCT payload->>?", field)).
		From(r.table()).
		Where(sq.Eq{"collection": collection}).
		Where(sq.Expr("payload->>? IS NOT NULL", field)).
		OrderBy("1 ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Distinct", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) GroupCount(ctx context.Context, collection, field string) ([]domain.GroupCount, error) {
	q := r.qb().Select().
		Column(sq.Expr("payload->>? AS k", field)).
		Column("count(*) AS cnt").
		From(r.table()).
		Where(sq.Eq{"collection": collection}).
		Where(sq.Expr("payload->>? IS NOT NULL", field)).
		GroupBy("1").
		OrderBy("2 DESC", "1 ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("GroupCount", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.GroupCount, 0, 8)
	for rows.Next() {
		var g domain.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PGRepo) SumInt(ctx context.Context, collection, field string) (int64, error) {
	q := r.qb().Select().
		Column(sq.Expr("COALESCE(SUM((payload->>?)::numeric), 0)::bigint", field)).
		From(r.table()).
		Where(sq.Eq{"collection": collection})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SumInt", sqlStr, args)

	var sum int64
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *PGRepo) Count(ctx context.Context, collection string) (int64, error) {
	q := r.qb().Select("count(*)").
		From(r.table()).
		Where(sq.Eq{"collection": collection})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Count", sqlStr, args)

	var n int64
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetOrder обновляет и колонку ord, и поле payload.order одним запросом
func (r *PGRepo) SetOrder(ctx context.Context, collection string, id domain.EntityID, ord int) error {
	q := r.qb().Update(r.table()).
		Set("ord", ord).
		Set("payload", sq.Expr("jsonb_set(payload, '{order}', to_jsonb(?::int))", ord)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.And{sq.Eq{"collection": collection}, sq.Eq{"id": id}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SetOrder", sqlStr, args)

	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func columnsCSV() string {
	out := ""
	for i, c := range entityColumns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
