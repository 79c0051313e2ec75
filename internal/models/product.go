// internal/models/product.go
package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU               string           `json:"sku" gorm:"uniqueIndex;size:100;not null"`
	Name              string           `json:"name" gorm:"size:255;not null"`
	Slug              string           `json:"slug" gorm:"size:255;index"`
	Description       string           `json:"description" gorm:"type:text"`
	Category          string           `json:"category" gorm:"size:100;index"`
	Price             decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	B2BPrice          *decimal.Decimal `json:"b2b_price" gorm:"column:b2b_price;type:decimal(12,2)"`
	Stock             int              `json:"stock" gorm:"default:0"`
	StockStatus       StockStatus      `json:"stock_status" gorm:"type:varchar(20);default:'in_stock'"`
	LowStockThreshold int              `json:"low_stock_threshold" gorm:"default:5"`
	IsB2BAvailable    bool             `json:"is_b2b_available" gorm:"column:is_b2b_available;default:false"`
	B2BMinQuantity    int              `json:"b2b_min_quantity" gorm:"column:b2b_min_quantity;default:1"`
	IsActive          bool             `json:"is_active" gorm:"default:true"`
	Images            pq.StringArray   `json:"images" gorm:"type:text[]"`

	// Relationships
	BusinessPricing []BusinessProductPricing `json:"business_pricing,omitempty" gorm:"foreignKey:ProductID"`
	OrderItems      []OrderItem              `json:"order_items,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0 && p.StockStatus == StockStatusInStock
}

func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// DeriveStockStatus maps a stock level to the status the catalog exposes.
// Backorder is sticky: a backordered product stays backordered until an
// explicit admin update.
func (p *Product) DeriveStockStatus(stock int) StockStatus {
	if p.StockStatus == StockStatusBackorder {
		return StockStatusBackorder
	}
	if stock <= 0 {
		return StockStatusOutOfStock
	}
	return StockStatusInStock
}
