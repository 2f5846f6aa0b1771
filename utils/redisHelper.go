package utils

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
)

// GetCacheLifespan reads SUMMARY_CACHE_TTL_SECONDS (default 120s).
func GetCacheLifespan() time.Duration {
	return time.Duration(config.IntFromEnv("SUMMARY_CACHE_TTL_SECONDS", 120)) * time.Second
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

func redisListKey[T any](userId int) string {
	return GetTypeName[T]() + "List:" + fmt.Sprint(userId)
}

// store a per-user list
func StoreRedisList[T any](obj []*T, userId int) error {
	return config.SetRedisObject(redisListKey[T](userId), obj, GetCacheLifespan())
}

// retrieve a per-user list
// returns nil if does not exist
func RetrieveRedisList[T any](userId int) ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(redisListKey[T](userId), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

func RemoveRedisList[T any](userId int) error {
	return config.RemoveRedisKey(redisListKey[T](userId))
}
