package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/tournament-rewards/models"
)

// ResultsArchive writes the final standings of a tournament as a JSON object.
type ResultsArchive struct {
	uploader FileUploader
}

func NewResultsArchive(uploader FileUploader) *ResultsArchive {
	return &ResultsArchive{uploader: uploader}
}

func standingsKey(standings *models.FinalStandings) string {
	return fmt.Sprintf("tournaments/%s/final-standings.json", standings.TournamentID)
}

func (a *ResultsArchive) ArchiveStandings(ctx context.Context, standings *models.FinalStandings) (string, error) {
	body, err := json.Marshal(standings)
	if err != nil {
		return "", fmt.Errorf("failed to encode standings: %w", err)
	}
	result, err := a.uploader.Upload(ctx, standingsKey(standings), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
