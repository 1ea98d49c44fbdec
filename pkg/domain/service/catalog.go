package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var ErrInvalidPageSize = errors.New("page size is not one of the offered options")

type SortKey string

const (
	SortFeatured     SortKey = "featured"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortRating       SortKey = "rating"
	SortNewest       SortKey = "newest"
	SortDiscount     SortKey = "discount"
)

// AllCategories disables category filtering.
const AllCategories model.ID = "all"

const (
	DefaultPageSize = 12
	maxPageWindow   = 5
)

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

var PageSizes = []int{8, 12, 16, 20, 24}

type CatalogQuery struct {
	Category model.ID
	Search   string
	Sort     SortKey
	Page     int
	PageSize int
}

type CatalogPage struct {
	Products   []model.Product `json:"products"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
	TotalItems int             `json:"totalItems"`
	Window     []int           `json:"window"`
	Category   string          `json:"category,omitempty"`
}

func MatchesCategory(p model.Product, category model.ID) bool {
	return category == "" || category == AllCategories || p.CategoryID == category
}

func MatchesSearch(p model.Product, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Brand), search)
}

func FilterProducts(products []model.Product, category model.ID, search string) []model.Product {
	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if MatchesCategory(p, category) && MatchesSearch(p, search) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// SortProducts returns a sorted copy. Equal elements keep fetch order.
func SortProducts(products []model.Product, key SortKey) []model.Product {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, comparator(key))
	return sorted
}

func comparator(key SortKey) func(a, b model.Product) int {
	switch key {
	case SortPriceLowHigh:
		return func(a, b model.Product) int { return compareFloat(a.Price, b.Price) }
	case SortPriceHighLow:
		return func(a, b model.Product) int { return compareFloat(b.Price, a.Price) }
	case SortRating:
		return func(a, b model.Product) int { return compareFloat(b.Rating, a.Rating) }
	case SortNewest:
		return func(a, b model.Product) int { return flag(b.IsNew) - flag(a.IsNew) }
	case SortDiscount:
		return func(a, b model.Product) int { return compareFloat(b.Discount, a.Discount) }
	default:
		return func(a, b model.Product) int { return flag(b.IsFeatured) - flag(a.IsFeatured) }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ValidPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// Paginate slices one page out of products, clamping page into range.
func Paginate(products []model.Product, page, pageSize int) CatalogPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(products)
	totalPages := (total + pageSize - 1) / pageSize
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	items := []model.Product{}
	if start < end {
		items = slices.Clone(products[start:end])
	}

	return CatalogPage{
		Products:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		Window:     PageWindow(page, totalPages),
	}
}

// PageWindow lists the page buttons to show, with Ellipsis for gaps.
func PageWindow(current, totalPages int) []int {
	if totalPages <= maxPageWindow {
		window := make([]int, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			window = append(window, i)
		}
		return window
	}

	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, 5, Ellipsis, totalPages}
	case current >= totalPages-2:
		window := []int{1, Ellipsis}
		for i := totalPages - 4; i <= totalPages; i++ {
			window = append(window, i)
		}
		return window
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, totalPages}
	}
}

// CatalogView holds the browsing state of one product listing. Changing
// the filter, search, sort or page size moves back to the first page.
type CatalogView struct {
	products   []model.Product
	categories []model.Category
	query      CatalogQuery
}

func NewCatalogView(products []model.Product, categories []model.Category) *CatalogView {
	return &CatalogView{
		products:   products,
		categories: categories,
		query: CatalogQuery{
			Category: AllCategories,
			Sort:     SortFeatured,
			Page:     1,
			PageSize: DefaultPageSize,
		},
	}
}

func (v *CatalogView) Query() CatalogQuery { return v.query }

func (v *CatalogView) SetCategory(category model.ID) {
	if category == "" {
		category = AllCategories
	}
	v.query.Category = category
	v.query.Page = 1
}

func (v *CatalogView) SetSearch(search string) {
	v.query.Search = search
	v.query.Page = 1
}

func (v *CatalogView) SetSort(key SortKey) {
	if key == "" {
		key = SortFeatured
	}
	v.query.Sort = key
	v.query.Page = 1
}

func (v *CatalogView) SetPageSize(size int) error {
	if !ValidPageSize(size) {
		return ErrInvalidPageSize
	}
	v.query.PageSize = size
	v.query.Page = 1
	return nil
}

func (v *CatalogView) SetPage(page int) {
	v.query.Page = page
	v.query.Page = v.Result().Page
}

func (v *CatalogView) NextPage() {
	current := v.Result()
	if current.Page < current.TotalPages {
		v.query.Page = current.Page + 1
	}
}

func (v *CatalogView) PrevPage() {
	if v.query.Page > 1 {
		v.query.Page--
	}
}

// Apply replaces the whole query the way a request carries it.
func (v *CatalogView) Apply(q CatalogQuery) error {
	v.SetCategory(q.Category)
	v.SetSearch(q.Search)
	v.SetSort(q.Sort)
	if q.PageSize != 0 {
		if err := v.SetPageSize(q.PageSize); err != nil {
			return err
		}
	}
	if q.Page > 0 {
		v.SetPage(q.Page)
	}
	return nil
}

func (v *CatalogView) CategoryName(id model.ID) string {
	for _, c := range v.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// Result recomputes the visible page from the current state.
func (v *CatalogView) Result() CatalogPage {
	filtered := FilterProducts(v.products, v.query.Category, v.query.Search)
	page := Paginate(SortProducts(filtered, v.query.Sort), v.query.Page, v.query.PageSize)
	if v.query.Category != AllCategories {
		page.Category = v.CategoryName(v.query.Category)
	}
	return page
}

type CatalogService interface {
	Browse(ctx context.Context, q CatalogQuery) (CatalogPage, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

func NewCatalogService(repo model.CatalogRepository, logger log.FieldLogger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

type catalogService struct {
	repo   model.CatalogRepository
	logger log.FieldLogger
}

func (s *catalogService) Browse(ctx context.Context, q CatalogQuery) (CatalogPage, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return CatalogPage{}, err
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		// the heading only loses its category name
		s.logger.WithError(err).Warn("categories unavailable, browsing without names")
		categories = nil
	}

	view := NewCatalogView(products, categories)
	if err := view.Apply(q); err != nil {
		return CatalogPage{}, err
	}
	return view.Result(), nil
}

func (s *catalogService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}
