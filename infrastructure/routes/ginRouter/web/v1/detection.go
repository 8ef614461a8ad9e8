package routev1

import (
	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

func DetectionRouter(router *gin.RouterGroup) {
	detectionRouter := router.Group("/detection")
	{
		detectionRouter.POST("/start", func(ctx *gin.Context) {
			var body dto.StartSessionDTO
			if ctx.Request.ContentLength > 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					apperrors.ErrorProcessingPayload(ctx)
					return
				}
			}
			controller.StartDetection(&interfaces.ApplicationContext[dto.StartSessionDTO]{
				Ctx:  ctx,
				Body: &body,
			})
		})

		detectionRouter.POST("/stop", func(ctx *gin.Context) {
			controller.StopDetection(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
			})
		})

		detectionRouter.GET("/status", func(ctx *gin.Context) {
			controller.DetectionStatus(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
			})
		})

		detectionRouter.POST("/frame", func(ctx *gin.Context) {
			var body dto.PushFrameDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.PushFrame(&interfaces.ApplicationContext[dto.PushFrameDTO]{
				Ctx:  ctx,
				Body: &body,
			})
		})

		detectionRouter.GET("/check-ins", func(ctx *gin.Context) {
			controller.RecentCheckIns(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
			})
		})
	}
}
