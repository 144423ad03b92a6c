package serverutils

import "github.com/gofiber/fiber/v2"

type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{Code: fiber.StatusOK, Message: message, Data: data}
}

func ErrorResponse(code int, message string) Response[any] {
	return Response[any]{Code: code, Message: message}
}

// ErrorResponseWithData is used for validation errors that list failing fields.
func ErrorResponseWithData[T any](code int, message string, data T) Response[T] {
	return Response[T]{Code: code, Message: message, Data: data}
}
