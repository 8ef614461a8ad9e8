package employee_usecases

import (
	"context"
	"errors"
	"strings"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/repository"
	"facegate.io/application/services/identity"
	"facegate.io/entities"
	"facegate.io/infrastructure/logger"
)

var ErrDuplicateEmail = errors.New("employee with email already exists")

func CreateEmployeeUseCase(ctx any, payload *dto.CreateEmployeeDTO) (*entities.Employee, error) {
	employeeRepo := repository.EmployeeRepo()

	if payload.Email != nil {
		email := strings.ToLower(*payload.Email)
		payload.Email = &email
		exists, err := employeeRepo.CountDocs(context.TODO(), map[string]interface{}{
			"email": email,
		})
		if err != nil {
			apperrors.UnknownError(ctx, err)
			return nil, err
		}
		if exists != 0 {
			apperrors.EntityAlreadyExistsError(ctx, "Employee with email already exists")
			return nil, ErrDuplicateEmail
		}
	}

	created, err := employeeRepo.CreateOne(context.TODO(), entities.Employee{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Department: payload.Department,
		Active:     true,
	})
	if err != nil {
		apperrors.UnknownError(ctx, err)
		return nil, err
	}

	logger.Info("employee created", logger.LoggerOptions{
		Key:  "employeeID",
		Data: created.ID,
	})
	identity.NotifyChanged()
	return created, nil
}
