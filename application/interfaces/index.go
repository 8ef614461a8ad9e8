package interfaces

import "github.com/gin-gonic/gin"

// ApplicationContext carries a validated request body and the underlying
// transport context through controllers and usecases.
type ApplicationContext[T any] struct {
	Ctx  *gin.Context
	Body *T
}

func (ac *ApplicationContext[T]) GetHeader(key string) string {
	return ac.Ctx.GetHeader(key)
}
