package services

import (
	"strings"

	"sarisari/internal/domain"
	"sarisari/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// List filters by exact category and case-insensitive name substring, paged.
func (s *CatalogService) List(category, nameQuery string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.List(category, strings.ToLower(strings.TrimSpace(nameQuery)), pageSize, offset)
}

func (s *CatalogService) Categories() ([]string, error) {
	return s.Prods.Categories()
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}
