package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles catalog queries and the admin product CRUD.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: newValidator(),
	}
}

// ListProducts returns the whole catalog, or only the products in ids when
// the filter is not empty.
func (s *ProductService) ListProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)
	if len(ids) == 0 {
		products, err = s.repo.GetAll(ctx)
	} else {
		products, err = s.repo.FindByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return product, nil
}

// CreateProduct validates the input and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	in = trimProductInput(in)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Photo:       in.Photo,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct overwrites every editable field of the product with id.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	id = strings.TrimSpace(id)
	in = trimProductInput(in)
	err := s.validateInput(in)
	if id == "" {
		fields := missingFields("_id")
		var verr *ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				fields[k] = v
			}
		}
		return nil, newValidationError("missing required product fields", fields)
	}
	if err != nil {
		return nil, err
	}
	product := &models.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Photo:       in.Photo,
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, translateNotFound(err)
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID. Unknown ids succeed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return newValidationError("missing product id", missingFields("_id"))
	}
	return s.repo.Delete(ctx, id)
}

// validateInput checks the required fields and that precio has at most two
// decimal places, the precision prices are stored with.
func (s *ProductService) validateInput(in models.ProductInput) error {
	if err := validateStruct(s.validate, "missing required product fields", in); err != nil {
		return err
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return newValidationError("invalid product price", map[string]string{
			"precio": "Field 'precio' failed on the 'decimals' tag",
		})
	}
	return nil
}

func trimProductInput(in models.ProductInput) models.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Photo = strings.TrimSpace(in.Photo)
	return in
}

// translateNotFound turns a repository miss into ErrNotFound, keeping the detail.
func translateNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
