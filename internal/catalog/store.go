package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"
)

// PageSize is the catalog browsing page size.
const PageSize = 12

// ErrNotFound is returned when no product or category matches.
var ErrNotFound = errors.New("catalog: not found")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store reads products and categories from Postgres. The storefront never
// writes to the catalog; admin mutations happen through a separate surface.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var productColumns = []string{
	"id", "category_id", "nome", "slug", "descricao_curta", "descricao_completa",
	"preco", "preco_promocional", "sku", "estoque",
	"peso_kg", "altura_cm", "largura_cm", "comprimento_cm",
	"ativo", "destaque", "imagens", "especificacoes", "tags",
	"created_at", "updated_at",
}

func (s *Store) selectProducts() squirrel.SelectBuilder {
	return psql.Select(productColumns...).From("products")
}

func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	row := s.selectProducts().Where(squirrel.Eq{"id": id}).RunWith(s.db).QueryRowContext(ctx)
	return scanProduct(row)
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := s.selectProducts().
		Where(squirrel.Eq{"slug": slug, "ativo": true}).
		RunWith(s.db).
		QueryRowContext(ctx)
	return scanProduct(row)
}

// GetByIDs hydrates products concurrently. Missing ids are skipped rather
// than failing the batch; callers decide what a hole means.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	results := make([]*Product, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for idx := range ids {
		idx := idx
		g.Go(func() error {
			p, err := s.GetByID(ctx, ids[idx])
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get product %s: %w", ids[idx], err)
			}
			results[idx] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(ids))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ListActive returns one catalog page (1-based), newest first.
func (s *Store) ListActive(ctx context.Context, page int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	q := s.selectProducts().
		Where(squirrel.Eq{"ativo": true}).
		OrderBy("created_at DESC").
		Limit(PageSize).
		Offset(uint64((page - 1) * PageSize))
	return s.queryProducts(ctx, q)
}

// ListByCategory returns one page of a category's active products.
func (s *Store) ListByCategory(ctx context.Context, categoryID string, page int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	q := s.selectProducts().
		Where(squirrel.Eq{"ativo": true, "category_id": categoryID}).
		OrderBy("created_at DESC").
		Limit(PageSize).
		Offset(uint64((page - 1) * PageSize))
	return s.queryProducts(ctx, q)
}

// ListPromotions returns active products whose promotional price is an actual
// discount.
func (s *Store) ListPromotions(ctx context.Context) ([]Product, error) {
	q := s.selectProducts().
		Where(squirrel.Eq{"ativo": true}).
		Where("preco_promocional IS NOT NULL AND preco_promocional < preco").
		OrderBy("created_at DESC")
	return s.queryProducts(ctx, q)
}

// ListFeatured returns active highlighted products for the home page.
func (s *Store) ListFeatured(ctx context.Context) ([]Product, error) {
	q := s.selectProducts().
		Where(squirrel.Eq{"ativo": true, "destaque": true}).
		OrderBy("created_at DESC")
	return s.queryProducts(ctx, q)
}

// SearchByName matches active products by a case-insensitive name fragment.
func (s *Store) SearchByName(ctx context.Context, term string) ([]Product, error) {
	q := s.selectProducts().
		Where(squirrel.Eq{"ativo": true}).
		Where(squirrel.ILike{"nome": "%" + term + "%"}).
		OrderBy("created_at DESC").
		Limit(PageSize)
	return s.queryProducts(ctx, q)
}

// ListCategories returns active categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := psql.Select("id", "nome", "slug", "descricao", "imagem_url", "ativo", "ordem", "created_at").
		From("categories").
		Where(squirrel.Eq{"ativo": true}).
		OrderBy("ordem ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		var imageURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &imageURL, &c.Active, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ImageURL = imageURL.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategoryBySlug returns the category behind a storefront category page.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	row := psql.Select("id", "nome", "slug", "descricao", "imagem_url", "ativo", "ordem", "created_at").
		From("categories").
		Where(squirrel.Eq{"slug": slug}).
		RunWith(s.db).
		QueryRowContext(ctx)

	var c Category
	var imageURL sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &imageURL, &c.Active, &c.SortOrder, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", slug, err)
	}
	c.ImageURL = imageURL.String
	return &c, nil
}

func (s *Store) queryProducts(ctx context.Context, q squirrel.SelectBuilder) ([]Product, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*Product, error) {
	p, err := scanProductRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// scanProductRows maps one row onto the domain model. Images, specs and tags
// live in jsonb columns; NULLs collapse to empty values so the rest of the
// core never sees the store's row shape.
func scanProductRows(row rowScanner) (*Product, error) {
	var (
		p          Product
		promoPrice sql.NullFloat64
		imagesRaw  []byte
		specsRaw   []byte
		tagsRaw    []byte
	)
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.ShortDescription, &p.FullDescription,
		&p.Price, &promoPrice, &p.SKU, &p.Stock,
		&p.WeightKg, &p.HeightCm, &p.WidthCm, &p.LengthCm,
		&p.Active, &p.Featured, &imagesRaw, &specsRaw, &tagsRaw,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if promoPrice.Valid {
		v := promoPrice.Float64
		p.PromoPrice = &v
	}
	if len(imagesRaw) > 0 {
		if err := json.Unmarshal(imagesRaw, &p.Images); err != nil {
			return nil, fmt.Errorf("decode imagens: %w", err)
		}
	}
	if len(specsRaw) > 0 {
		if err := json.Unmarshal(specsRaw, &p.Specs); err != nil {
			return nil, fmt.Errorf("decode especificacoes: %w", err)
		}
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &p, nil
}
