package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/shared"
)

const (
	defaultWikidataURL = "https://www.wikidata.org"
	propertyImage      = "P18"
)

type wikidataClaim struct {
	Mainsnak struct {
		Datavalue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// Wikidata reads entity claims from Special:EntityData.
type Wikidata struct {
	client  *Client
	baseURL string
}

// NewWikidata creates a Wikidata client.
func NewWikidata(client *Client, baseURL string) *Wikidata {
	if baseURL == "" {
		baseURL = defaultWikidataURL
	}
	return &Wikidata{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// ImageFileName returns the Commons file name of the entity's image (P18).
func (w *Wikidata) ImageFileName(ctx context.Context, qid string) (string, error) {
	var response struct {
		Entities map[string]struct {
			Claims map[string][]wikidataClaim `json:"claims"`
		} `json:"entities"`
	}

	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", w.baseURL, url.PathEscape(qid))
	if err := w.client.getJSON(ctx, endpoint, &response); err != nil {
		return "", fmt.Errorf("wikidata entity: %w", err)
	}

	entity, ok := response.Entities[qid]
	if !ok {
		return "", fmt.Errorf("%w: wikidata entity %s missing", shared.ErrNoMatch, qid)
	}

	claims := entity.Claims[propertyImage]
	if len(claims) == 0 {
		return "", fmt.Errorf("%w: %s has no image claim", shared.ErrNoMatch, qid)
	}

	var fileName string
	if err := json.Unmarshal(claims[0].Mainsnak.Datavalue.Value, &fileName); err != nil || fileName == "" {
		return "", fmt.Errorf("%w: %s image claim is not a file name", shared.ErrNoMatch, qid)
	}
	return fileName, nil
}
