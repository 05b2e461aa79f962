package storage

import (
	"fmt"

	"todolist-web/internal/models"

	"github.com/goccy/go-json"
)

func encodeSession(data *models.SessionData) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return payload, nil
}

func decodeSession(payload []byte) (*models.SessionData, error) {
	data := models.NewSessionData()
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if data.Lists == nil {
		data.Lists = make([]models.List, 0)
	}
	for i := range data.Lists {
		if data.Lists[i].Todos == nil {
			data.Lists[i].Todos = make([]models.Todo, 0)
		}
	}
	return data, nil
}
