package routev1

import (
	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

func EmployeeRouter(router *gin.RouterGroup) {
	employeeRouter := router.Group("/employee")
	{
		employeeRouter.POST("/create", func(ctx *gin.Context) {
			var body dto.CreateEmployeeDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.CreateEmployee(&interfaces.ApplicationContext[dto.CreateEmployeeDTO]{
				Ctx:  ctx,
				Body: &body,
			})
		})

		employeeRouter.GET("/list", func(ctx *gin.Context) {
			controller.ListEmployees(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
			})
		})

		employeeRouter.GET("/:id/enrollment", func(ctx *gin.Context) {
			controller.EnrollmentStatus(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
			}, ctx.Param("id"))
		})

		employeeRouter.POST("/enroll", func(ctx *gin.Context) {
			var body dto.EnrollSampleDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.EnrollSample(&interfaces.ApplicationContext[dto.EnrollSampleDTO]{
				Ctx:  ctx,
				Body: &body,
			})
		})
	}
}
