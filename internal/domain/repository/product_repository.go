package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product junto con sus entradas de stock
// y su configuración fraccionada. Dentro de una transacción, todas las lecturas ven las escrituras previas.
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate igual que GetByID pero bloquea el producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs omite los IDs inexistentes.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// ListFractionalParents IDs de padres activos que declaran a childID como fracción.
	ListFractionalParents(ctx context.Context, childID string) ([]string, error)
	// ListFractionalProducts IDs de todos los productos con fraccionamiento activo.
	ListFractionalProducts(ctx context.Context) ([]string, error)
	// SaveStocks reemplaza las entradas de stock y el agregado Stock del producto.
	SaveStocks(ctx context.Context, product *entity.Product) error
	// SaveFractionalSnapshot persiste los campos derivados de Fractional.
	SaveFractionalSnapshot(ctx context.Context, product *entity.Product) error
	// SaveFractionalConfig persiste Active e Items.
	SaveFractionalConfig(ctx context.Context, product *entity.Product) error
	// SetParentLink marca parentID como padre de cada hijo.
	SetParentLink(ctx context.Context, childIDs []string, parentID string) error
	// ClearParentLinks quita el vínculo de los hijos de parentID que no estén en keep.
	ClearParentLinks(ctx context.Context, parentID string, keep []string) error
}
