package storage

import (
	"context"
	"fmt"
	"io"
)

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// ResultsArchive - хранилище опубликованных итогов турниров.
type ResultsArchive interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*PutResult, error)

	PublicURL(key string) string
}

// StandingsKey - ключ итоговой таблицы турнира в архиве.
func StandingsKey(tournamentID int) string {
	return fmt.Sprintf("tournaments/%d/standings.json", tournamentID)
}
