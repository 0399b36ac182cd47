package redis

import (
	"fmt"

	"github.com/mcoot/elostealo/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "elostealo"

// recordKey returns the Redis key for a GameRecord
func recordKey(id model.GameID) string {
	return fmt.Sprintf("%s:record:%s", keyPrefix, id)
}

// recordIndexKey returns the Redis key for the ZSET of record ids scored by finish time
func recordIndexKey() string {
	return fmt.Sprintf("%s:idx:records", keyPrefix)
}

// localGameKey returns the Redis key for a LocalGame
func localGameKey(id model.GameID) string {
	return fmt.Sprintf("%s:local:%s", keyPrefix, id)
}
