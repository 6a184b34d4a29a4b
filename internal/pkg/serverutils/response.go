package serverutils

import "github.com/gofiber/fiber/v2"

// Response is the envelope every API route answers with.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
	Meta    interface{} `json:"meta"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string, errors interface{}) Response {
	return Response{
		Success: false,
		Code:    code,
		Message: message,
		Errors:  errors,
	}
}
