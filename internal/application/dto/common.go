package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // campo -> regla incumplida (errores de validación)
}

// StatusResponse cuerpo de GET / (estado del servicio y contador de visitas).
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
	Visits  int64  `json:"visits"`
}
