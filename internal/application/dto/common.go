package dto

// ErrorResponse cuerpo de error HTTP: un código estable para el cliente y un
// mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
