package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto y topes a Limit/Offset.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse cuerpo de error para salidas sin stock.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
	Deficit   int64  `json:"deficit"`
}
