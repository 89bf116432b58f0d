package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sarisari/internal/domain"
	"sarisari/internal/repos"
)

// InventoryService backs the inventory editor: product CRUD plus the
// add-stock action. Status is never set directly; every mutation recomputes
// it from the quantity.
type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

func (s *InventoryService) Create(name, category string, price decimal.Decimal, stock int, imagePath string) (string, error) {
	if stock < 0 {
		stock = 0
	}
	id := slug(name) + "-" + uuid.NewString()[:8]
	p := domain.Product{
		ID:        id,
		Name:      name,
		Category:  category,
		UnitPrice: price,
		StockQty:  stock,
		ImagePath: imagePath,
	}
	if err := s.Prods.Create(p); err != nil {
		return "", err
	}
	return id, nil
}

func (s *InventoryService) Update(id, name, category string, price decimal.Decimal) error {
	return s.Prods.Update(id, name, category, price)
}

func (s *InventoryService) Delete(id string) error {
	return s.Prods.Delete(id)
}

// AddStock adds units atomically; status recomputes in the same statement.
func (s *InventoryService) AddStock(id string, by int) error {
	if by < 1 {
		return ErrBadQty
	}
	return s.Prods.AddStock(id, by)
}

func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 24 {
		out = out[:24]
	}
	if out == "" {
		out = "product"
	}
	return out
}
