package configurations

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var errInvalidMetadata = errors.New("metadata is not valid json")

// metadataOf returns the row metadata, or an error when it is present but
// malformed. Absent metadata is treated as an empty object.
func metadataOf(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, errInvalidMetadata
	}
	return raw, nil
}

func metadataString(raw []byte, key string) string {
	return gjson.GetBytes(raw, key).String()
}

func metadataInt(raw []byte, key string) int64 {
	return gjson.GetBytes(raw, key).Int()
}

func metadataBool(raw []byte, key string) bool {
	return gjson.GetBytes(raw, key).Bool()
}

// metadataUUID returns the uuid stored under key; null, missing or unparsable
// values report false.
func metadataUUID(raw []byte, key string) (uuid.UUID, bool) {
	r := gjson.GetBytes(raw, key)
	if r.Type != gjson.String {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.Str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
