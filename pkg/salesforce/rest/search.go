package sfrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// Search runs a SOQL query and returns every record of the result set,
// following nextRecordsUrl until Salesforce reports the query as done.
// Large result sets are loaded into memory, so queries should be limited.
func (s *Salesforce) Search(ctx context.Context, soql string) ([]Record, error) {
	endpoint := s.dataURL("query/?q=" + url.QueryEscape(soql))
	records := []Record{}

	s.logger.Debug("Running query", zap.String("soql", soql))

	for page := 1; ; page++ {
		if s.maxQueryPages > 0 && page > s.maxQueryPages {
			return nil, fmt.Errorf("%w: limit is %d pages", ErrTooManyPages, s.maxQueryPages)
		}

		var result queryResponse
		if err := s.authorizedRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
			return nil, err
		}
		records = append(records, result.Records...)

		if result.Done {
			s.logger.Debug("Query complete",
				zap.Int("pages", page),
				zap.Int("records", len(records)))
			return records, nil
		}

		if result.NextRecordsURL == "" {
			return nil, fmt.Errorf("query page %d is not done but has no nextRecordsUrl", page)
		}

		// nextRecordsUrl is absolute from the instance root, e.g.
		// /services/data/v37.0/query/01gD0000002HU6KIAW-2000.
		endpoint = httpclient.JoinURL(s.baseURL, result.NextRecordsURL)
	}
}
