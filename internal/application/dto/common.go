package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ListResponse envoltorio de listados paginados.
type ListResponse[T any] struct {
	Items []T          `json:"items"`
	Page  PageResponse `json:"page"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse cuerpo de error 409 con los montos del rechazo.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Current   int64  `json:"current"`
	Requested int64  `json:"requested"`
}
