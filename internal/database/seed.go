package database

import (
	"context"
	"fmt"
	"log"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/shopspring/decimal"
)

// DefaultCatalog is loaded by SeedCatalog into an empty store.
func DefaultCatalog() []models.Product {
	return []models.Product{
		{Name: "Taza de cerámica", Description: "Taza artesanal de 350 ml", Price: decimal.RequireFromString("180.00"), Category: "Cocina", Photo: "/img/taza.jpg"},
		{Name: "Rebozo de algodón", Description: "Rebozo tejido en telar de cintura", Price: decimal.RequireFromString("950.00"), Category: "Textiles", Photo: "/img/rebozo.jpg"},
		{Name: "Café de Chiapas", Description: "Café de altura molido, 500 g", Price: decimal.RequireFromString("240.50"), Category: "Despensa", Photo: "/img/cafe.jpg"},
	}
}

// SeedCatalog inserts products when the catalog is empty and returns how many
// were stored.
func SeedCatalog(ctx context.Context, repo repositories.ProductRepository, products []models.Product) (int, error) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		seeded++
	}
	return seeded, nil
}
