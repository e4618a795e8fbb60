package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

// jewelryDetails сериализует payload тегированного варианта в JSONB-колонку.
type jewelryDetails struct {
	Ring     *domain.RingDetails     `json:"ring,omitempty"`
	Necklace *domain.NecklaceDetails `json:"necklace,omitempty"`
	Watch    *domain.WatchDetails    `json:"watch,omitempty"`
}

func marshalDetails(j domain.Jewelry) ([]byte, error) {
	return json.Marshal(jewelryDetails{Ring: j.Ring, Necklace: j.Necklace, Watch: j.Watch})
}

func unmarshalDetails(raw []byte, j *domain.Jewelry) error {
	if len(raw) == 0 {
		return nil
	}
	var details jewelryDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return fmt.Errorf("unmarshal jewelry details: %w", err)
	}
	j.Ring = details.Ring
	j.Necklace = details.Necklace
	j.Watch = details.Watch
	return nil
}

func (r *catalogRepository) Create(jewelry domain.Jewelry) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	details, err := marshalDetails(jewelry)
	if err != nil {
		return fmt.Errorf("marshal jewelry details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO jewelry (
			id, name, kind, material, price_minor, stock, details, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		jewelry.ID, jewelry.Name, string(jewelry.Kind), jewelry.Material,
		jewelry.PriceMinor, jewelry.Stock, details, jewelry.CreatedAt, jewelry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Field: "jewelry_id", Value: jewelry.ID}
		}
		return fmt.Errorf("insert jewelry: %w", err)
	}
	return nil
}

func (r *catalogRepository) Get(id string) (domain.Jewelry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.get(ctx, id)
}

func (r *catalogRepository) get(ctx context.Context, id string) (domain.Jewelry, error) {
	var (
		jewelry domain.Jewelry
		kind    string
		details []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, material, price_minor, stock, details, created_at, updated_at
		FROM jewelry
		WHERE id = $1
	`, id).Scan(
		&jewelry.ID, &jewelry.Name, &kind, &jewelry.Material,
		&jewelry.PriceMinor, &jewelry.Stock, &details, &jewelry.CreatedAt, &jewelry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Jewelry{}, domain.NewNotFound("jewelry", id)
		}
		return domain.Jewelry{}, fmt.Errorf("select jewelry: %w", err)
	}
	jewelry.Kind = domain.JewelryKind(kind)
	if err := unmarshalDetails(details, &jewelry); err != nil {
		return domain.Jewelry{}, err
	}
	return jewelry, nil
}

func (r *catalogRepository) List(limit int) ([]domain.Jewelry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, name, kind, material, price_minor, stock, details, created_at, updated_at
		FROM jewelry
		ORDER BY id
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("select jewelry list: %w", err)
	}
	defer rows.Close()

	var result []domain.Jewelry
	for rows.Next() {
		var (
			jewelry domain.Jewelry
			kind    string
			details []byte
		)
		if err := rows.Scan(
			&jewelry.ID, &jewelry.Name, &kind, &jewelry.Material,
			&jewelry.PriceMinor, &jewelry.Stock, &details, &jewelry.CreatedAt, &jewelry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan jewelry: %w", err)
		}
		jewelry.Kind = domain.JewelryKind(kind)
		if err := unmarshalDetails(details, &jewelry); err != nil {
			return nil, err
		}
		result = append(result, jewelry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jewelry: %w", err)
	}
	return result, nil
}

func (r *catalogRepository) UpdatePrice(id string, priceMinor int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE jewelry
		SET price_minor = $1,
		    updated_at = $2
		WHERE id = $3
	`, priceMinor, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update jewelry price: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFound("jewelry", id)
	}
	return nil
}

// AdjustStock выполняет атомарный условный апдейт остатка одним запросом:
// проверка "хватает ли остатка" и запись происходят в одной строке UPDATE,
// поэтому два конкурентных списания не могут оба пройти по устаревшему
// значению.
func (r *catalogRepository) AdjustStock(id string, delta int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE jewelry
		SET stock = stock + $1,
		    updated_at = $2
		WHERE id = $3
		  AND stock + $1 >= 0
	`, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("adjust jewelry stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Ноль затронутых строк: либо украшения нет, либо остатка не хватило.
	jewelry, getErr := r.get(ctx, id)
	if getErr != nil {
		return getErr
	}
	return &domain.OutOfStockError{
		JewelryID: id,
		Available: jewelry.Stock,
		Requested: -delta,
	}
}

// AdjustStockBatch применяет изменения остатков в одной транзакции: каждая
// строка меняется тем же условным UPDATE, что и AdjustStock, а отказ любой
// строки откатывает всю транзакцию. Крах процесса между строками не может
// оставить частично применённое списание.
func (r *catalogRepository) AdjustStockBatch(changes []domain.StockChange) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, change := range changes {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE jewelry
			SET stock = stock + $1,
			    updated_at = $2
			WHERE id = $3
			  AND stock + $1 >= 0
		`, change.Delta, now, change.JewelryID)
		if err != nil {
			return fmt.Errorf("adjust jewelry stock: %w", err)
		}
		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = r.stockFailure(ctx, tx, change)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock batch: %w", err)
	}
	return nil
}

// stockFailure различает отсутствие строки и нехватку остатка для
// неудавшегося условного UPDATE внутри транзакции tx.
func (r *catalogRepository) stockFailure(ctx context.Context, tx *sql.Tx, change domain.StockChange) error {
	var stock int32
	scanErr := tx.QueryRowContext(ctx, `SELECT stock FROM jewelry WHERE id = $1`, change.JewelryID).Scan(&stock)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return domain.NewNotFound("jewelry", change.JewelryID)
	}
	if scanErr != nil {
		return fmt.Errorf("read jewelry stock: %w", scanErr)
	}
	return &domain.OutOfStockError{
		JewelryID: change.JewelryID,
		Available: stock,
		Requested: -change.Delta,
	}
}

func (r *catalogRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM jewelry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete jewelry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFound("jewelry", id)
	}
	return nil
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
var _ domain.StockBatchAdjuster = (*catalogRepository)(nil)
