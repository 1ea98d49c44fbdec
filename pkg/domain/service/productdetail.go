package service

import (
	"context"

	"storefront/pkg/domain/model"
)

const relatedProductsLimit = 4

// CatalogRoute is where a shopper lands after a terminal "not found".
const CatalogRoute = "/products"

// ProductDetail is the state of one product page.
type ProductDetail struct {
	Product       model.Product   `json:"product"`
	SelectedColor string          `json:"selectedColor"`
	SelectedSize  string          `json:"selectedSize"`
	SelectedImage int             `json:"selectedImage"`
	Quantity      int             `json:"quantity"`
	Related       []model.Product `json:"related"`
}

func NewProductDetail(p model.Product) *ProductDetail {
	d := &ProductDetail{Product: p, Quantity: 1, SelectedColor: model.DefaultVariant, SelectedSize: model.DefaultVariant}
	if len(p.Colors) > 0 {
		d.SelectedColor = p.Colors[0]
	}
	if len(p.Sizes) > 0 {
		d.SelectedSize = p.Sizes[0]
	}
	return d
}

func (d *ProductDetail) SelectImage(index int) {
	last := len(d.Product.Images) - 1
	switch {
	case last < 0 || index < 0:
		d.SelectedImage = 0
	case index > last:
		d.SelectedImage = last
	default:
		d.SelectedImage = index
	}
}

// Image is the URL of the selected image, or the thumbnail when the product has none.
func (d *ProductDetail) Image() string {
	if d.SelectedImage < len(d.Product.Images) {
		return d.Product.Images[d.SelectedImage]
	}
	return d.Product.Thumbnail
}

// SetQuantity keeps the quantity between one and the stock on hand.
func (d *ProductDetail) SetQuantity(quantity int) {
	if d.Product.Stock > 0 && quantity > d.Product.Stock {
		quantity = d.Product.Stock
	}
	if quantity < 1 {
		quantity = 1
	}
	d.Quantity = quantity
}

// LineItem builds the cart line the page would add.
func (d *ProductDetail) LineItem() model.CartLineItem {
	return model.CartLineItem{
		ProductID: d.Product.ID,
		Name:      d.Product.Name,
		Color:     d.SelectedColor,
		Size:      d.SelectedSize,
		Quantity:  d.Quantity,
		Price:     d.Product.Price,
		Thumbnail: d.Product.PrimaryImage(),
		Stock:     d.Product.Stock,
	}
}

type ProductDetailService interface {
	Load(ctx context.Context, id model.ID) (*ProductDetail, error)
}

func NewProductDetailService(repo model.CatalogRepository) ProductDetailService {
	return &productDetailService{repo: repo}
}

type productDetailService struct {
	repo model.CatalogRepository
}

func (s *productDetailService) Load(ctx context.Context, id model.ID) (*ProductDetail, error) {
	if id == "" {
		return nil, model.ErrProductNotFound
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.ID == "" {
		return nil, model.ErrProductNotFound
	}

	detail := NewProductDetail(*product)
	detail.Related = []model.Product{}

	if product.CategoryID != "" {
		// related products are decoration, a failed lookup leaves them empty
		related, err := s.repo.ListProductsByCategory(ctx, product.CategoryID)
		if err == nil {
			detail.Related = relatedProducts(related, product.ID)
		}
	}
	return detail, nil
}

func relatedProducts(candidates []model.Product, exclude model.ID) []model.Product {
	related := make([]model.Product, 0, relatedProductsLimit)
	for _, p := range candidates {
		if p.ID == exclude {
			continue
		}
		related = append(related, p)
		if len(related) == relatedProductsLimit {
			break
		}
	}
	return related
}
