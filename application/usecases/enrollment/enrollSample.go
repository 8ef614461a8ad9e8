package enrollment_usecases

import (
	"context"
	"errors"
	"time"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/repository"
	"facegate.io/application/services/identity"
	"facegate.io/entities"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/logger"
)

var extractor = biometric.NewAutoExtractor()
var aggregator = biometric.NewEnrollmentAggregator(types.EnrollmentConfig{})

var ErrEmployeeNotFound = errors.New("employee not found")

// EnrollSampleUseCase runs one submitted face sample through the enrollment
// gates and persists the updated set when it is admitted.
func EnrollSampleUseCase(ctx any, payload *dto.EnrollSampleDTO) (*entities.EnrollmentSet, biometric.AdmitOutcome, error) {
	employeeRepo := repository.EmployeeRepo()

	employee, err := employeeRepo.FindOneByID(context.TODO(), payload.EmployeeID)
	if err != nil {
		apperrors.UnknownError(ctx, err)
		return nil, "", err
	}
	if employee == nil {
		apperrors.NotFoundError(ctx, ErrEmployeeNotFound.Error())
		return nil, "", ErrEmployeeNotFound
	}

	frame, err := payload.Frame.ToFrame()
	if err != nil {
		apperrors.ClientError(ctx, "invalid frame payload", []error{err})
		return nil, "", err
	}
	vector, err := extractor.Extract(frame)
	if err != nil {
		apperrors.ClientError(ctx, "no usable face in the submitted sample", []error{err})
		return nil, "", err
	}

	candidate := entities.EmbeddingEntry{
		Vector:    vector,
		Angle:     payload.Angle,
		Quality:   payload.Quality,
		RefImage:  payload.RefImage,
		CreatedAt: time.Now(),
	}
	set, outcome := aggregator.Admit(employee.Enrollment, candidate)

	if outcome.Accepted() {
		_, err = employeeRepo.UpdatePartialByID(context.TODO(), employee.ID, map[string]interface{}{
			"enrollment": set,
		})
		if err != nil {
			apperrors.UnknownError(ctx, err)
			return nil, "", err
		}
		identity.NotifyChanged()
		logger.Info("enrollment sample admitted", logger.LoggerOptions{
			Key:  "employeeID",
			Data: employee.ID,
		}, logger.LoggerOptions{
			Key:  "outcome",
			Data: string(outcome),
		}, logger.LoggerOptions{
			Key:  "entries",
			Data: len(set.Entries),
		})
	} else {
		logger.Info("enrollment sample rejected", logger.LoggerOptions{
			Key:  "employeeID",
			Data: employee.ID,
		}, logger.LoggerOptions{
			Key:  "outcome",
			Data: string(outcome),
		})
	}

	return &set, outcome, nil
}
