package entity

// ProductVariation es la unidad inventariable (SKU) de un producto. Solo lectura para este servicio.
type ProductVariation struct {
	ID         string
	BusinessID string
	ProductID  string
	SKU        string
	Name       string
	Unit       string
}
