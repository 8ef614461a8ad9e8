package controller

import (
	"net/http"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/repository"
	employee_usecases "facegate.io/application/usecases/employee"
	enrollment_usecases "facegate.io/application/usecases/enrollment"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/validator"
)

func CreateEmployee(ctx *interfaces.ApplicationContext[dto.CreateEmployeeDTO]) {
	valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	employee, err := employee_usecases.CreateEmployeeUseCase(ctx.Ctx, ctx.Body)
	if err != nil {
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "employee created", employee, nil)
}

func ListEmployees(ctx *interfaces.ApplicationContext[any]) {
	employees, err := repository.EmployeeRepo().FindMany(ctx.Ctx, map[string]interface{}{
		"deletedAt": nil,
	})
	if err != nil {
		apperrors.UnknownError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "employees fetched", employees, nil)
}

// EnrollmentStatus reports how far along an employee's enrollment is: the
// resolved representation kind, entry count and which pose angles are covered.
func EnrollmentStatus(ctx *interfaces.ApplicationContext[any], employeeID string) {
	employee, err := repository.EmployeeRepo().FindOneByID(ctx.Ctx, employeeID)
	if err != nil {
		apperrors.UnknownError(ctx.Ctx, err)
		return
	}
	if employee == nil {
		apperrors.NotFoundError(ctx.Ctx, "employee not found")
		return
	}
	representation := employee.Representation()
	status := map[string]interface{}{
		"kind":    representation.Kind,
		"entries": 0,
	}
	if employee.Enrollment != nil {
		status["entries"] = len(employee.Enrollment.Entries)
		status["coverage"] = employee.Enrollment.AngleCoverage()
		status["updatedAt"] = employee.Enrollment.UpdatedAt
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "enrollment status", status, nil)
}

// EnrollSample feeds one captured face sample through the enrollment gates.
// The response always carries the admission outcome so capture clients can
// tell an admitted sample from a rejected one.
func EnrollSample(ctx *interfaces.ApplicationContext[dto.EnrollSampleDTO]) {
	valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	set, outcome, err := enrollment_usecases.EnrollSampleUseCase(ctx.Ctx, ctx.Body)
	if err != nil {
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "sample processed", map[string]interface{}{
		"outcome":    outcome,
		"enrollment": set,
	}, nil)
}
