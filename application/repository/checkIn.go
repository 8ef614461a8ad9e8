package repository

import (
	"sync"

	"facegate.io/entities"
	"facegate.io/infrastructure/database/connection/datastore"
	"facegate.io/infrastructure/database/repository/mongo"
)

var checkInOnce = sync.Once{}

var checkInRepository mongo.MongoRepository[entities.CheckIn]

func CheckInRepo() *mongo.MongoRepository[entities.CheckIn] {
	checkInOnce.Do(func() {
		checkInRepository = mongo.MongoRepository[entities.CheckIn]{Model: datastore.CheckInModel}
	})
	return &checkInRepository
}
