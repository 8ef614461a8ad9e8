package mongo

import (
	"context"
	"errors"
	"time"

	"facegate.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (repo *MongoRepository[T]) createCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 15*time.Second)
}

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.InsertOne(c, parsed)
	if err != nil {
		logger.Error("an error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return parsed, nil
}

func (repo *MongoRepository[T]) FindOneByID(ctx context.Context, id string) (*T, error) {
	return repo.FindOneByFilter(ctx, map[string]interface{}{"_id": id})
}

func (repo *MongoRepository[T]) FindOneByFilter(ctx context.Context, filter map[string]interface{}) (*T, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("an error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindMany(ctx context.Context, filter map[string]interface{}, opts ...FindOptions) ([]T, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	findOpts := options.Find()
	for _, opt := range opts {
		if opt.Sort != nil {
			findOpts.SetSort(*opt.Sort)
		}
		if opt.Projection != nil {
			findOpts.SetProjection(*opt.Projection)
		}
		if opt.Skip != nil {
			findOpts.SetSkip(*opt.Skip)
		}
		if opt.Limit != nil {
			findOpts.SetLimit(*opt.Limit)
		}
	}

	cursor, err := repo.Model.Find(c, filter, findOpts)
	if err != nil {
		logger.Error("an error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}

	var results []T
	if err := cursor.All(c, &results); err != nil {
		logger.Error("an error occured while decoding FindMany results", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return results, nil
}

func (repo *MongoRepository[T]) UpdatePartialByID(ctx context.Context, id string, updates map[string]interface{}) (int64, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	updates["updatedAt"] = time.Now()
	result, err := repo.Model.UpdateOne(c, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		logger.Error("an error occured while running UpdatePartialByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (repo *MongoRepository[T]) CountDocs(ctx context.Context, filter map[string]interface{}) (int64, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	count, err := repo.Model.CountDocuments(c, filter)
	if err != nil {
		logger.Error("an error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return count, nil
}

func (repo *MongoRepository[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	c, cancel := repo.createCtx(ctx)
	defer cancel()

	result, err := repo.Model.DeleteOne(c, bson.M{"_id": id})
	if err != nil {
		logger.Error("an error occured while running DeleteByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.DeletedCount, nil
}
