package controller

import (
	"net/http"
	"sync"
	"time"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/detection"
	"facegate.io/application/interfaces"
	"facegate.io/application/repository"
	"facegate.io/application/services/checkin"
	"facegate.io/application/services/identity"
	mongoRepo "facegate.io/infrastructure/database/repository/mongo"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/validator"
	"go.mongodb.org/mongo-driver/bson"
)

// frameSource is shared between the session (which captures from it) and the
// push-frame endpoint (which feeds it). One camera client per deployment.
var frameSource = detection.NewPushFrameSource()

var configMu sync.Mutex
var sessionConfig = detection.DefaultConfig()

var sessionManager = detection.NewManager(func() *detection.Session {
	configMu.Lock()
	config := sessionConfig
	configMu.Unlock()
	session := detection.NewSession(frameSource, identity.NewStore(), checkin.NewRecorder(), config)
	session.OnMatched(checkin.PublishMatched)
	return session
})

func StartDetection(ctx *interfaces.ApplicationContext[dto.StartSessionDTO]) {
	if ctx.Body != nil {
		valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
		if valiedationErr != nil {
			apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
			return
		}
		configMu.Lock()
		if ctx.Body.DebounceTicks != nil {
			sessionConfig.DebounceTicks = *ctx.Body.DebounceTicks
		}
		if ctx.Body.TickIntervalMS != nil {
			sessionConfig.TickInterval = time.Duration(*ctx.Body.TickIntervalMS) * time.Millisecond
		}
		configMu.Unlock()
	}

	session, err := sessionManager.Start(ctx.Ctx)
	if err != nil {
		if err == detection.ErrSessionActive {
			apperrors.ConflictError(ctx.Ctx, err.Error())
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "detection started", session.Status(), nil)
}

func StopDetection(ctx *interfaces.ApplicationContext[any]) {
	if err := sessionManager.Stop(); err != nil {
		if err == detection.ErrSessionNotActive {
			apperrors.NotFoundError(ctx.Ctx, err.Error())
			return
		}
		apperrors.UnknownError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "detection stopped", nil, nil)
}

func DetectionStatus(ctx *interfaces.ApplicationContext[any]) {
	session := sessionManager.Current()
	if session == nil {
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "no session yet", detection.Status{
			State: detection.STATE_IDLE,
		}, nil)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "session status", session.Status(), nil)
}

func PushFrame(ctx *interfaces.ApplicationContext[dto.PushFrameDTO]) {
	valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	frame, err := ctx.Body.ToFrame()
	if err != nil {
		apperrors.ClientError(ctx.Ctx, err.Error(), nil)
		return
	}
	frameSource.Push(frame)
	server_response.Responder.Respond(ctx.Ctx, http.StatusAccepted, "frame accepted", nil, nil)
}

// RecentCheckIns reads the persisted history, newest first, independent of
// any session's in-memory display log.
func RecentCheckIns(ctx *interfaces.ApplicationContext[any]) {
	var sort interface{} = bson.M{"timestamp": -1}
	var limit int64 = 50
	checkIns, err := repository.CheckInRepo().FindMany(ctx.Ctx, map[string]interface{}{}, mongoRepo.FindOptions{
		Sort:  &sort,
		Limit: &limit,
	})
	if err != nil {
		apperrors.UnknownError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "recent check-ins", checkIns, nil)
}
