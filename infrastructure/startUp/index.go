package startup

import (
	"facegate.io/infrastructure/database"
	"facegate.io/infrastructure/database/connection/datastore"
	"facegate.io/infrastructure/logger"
)

// Used to start services such as loggers, databases, queues, etc.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	datastore.CleanUp()
}
