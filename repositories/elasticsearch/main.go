package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"importer/models"
	"importer/models/indexes"
	"importer/repositories"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/labstack/gommon/log"
	"github.com/mitchellh/mapstructure"
)

type Store struct {
	es     *es7.Client
	logger *log.Logger
}

func NewStore(es *es7.Client, logger *log.Logger) *Store {
	return &Store{es: es, logger: logger}
}

var indexMappings = []struct {
	name    string
	mapping map[string]interface{}
}{
	{indexes.AssembliesIndex, indexes.ASSEMBLY_INDEX_MAPPING},
	{indexes.VariationsIndex, indexes.VARIATION_INDEX_MAPPING},
	{indexes.ReportsIndex, indexes.REPORT_INDEX_MAPPING},
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, index := range indexMappings {
		res, err := esapi.IndicesExistsRequest{Index: []string{index.name}}.Do(ctx, s.es)
		if err != nil {
			return &models.StoreError{Op: "check index " + index.name, Err: err}
		}
		res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		}

		body, err := json.Marshal(map[string]interface{}{"mappings": index.mapping})
		if err != nil {
			return err
		}

		res, err = esapi.IndicesCreateRequest{Index: index.name, Body: bytes.NewReader(body)}.Do(ctx, s.es)
		if err != nil {
			return &models.StoreError{Op: "create index " + index.name, Err: err}
		}
		if err := responseError(res); err != nil {
			return &models.StoreError{Op: "create index " + index.name, Err: err}
		}
		res.Body.Close()
		s.logger.Infof("Created index %s", index.name)
	}
	return nil
}

// indexDocument stores doc under id and returns "<index>/<id>/<version>". esapi puts
// document ids into the path as is, so ids such as "18590/2/8" are escaped here.
func (s *Store) indexDocument(ctx context.Context, index string, id string, doc interface{}) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	res, err := esapi.IndexRequest{
		Index:      index,
		DocumentID: url.PathEscape(id),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}.Do(ctx, s.es)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if err := responseError(res); err != nil {
		return "", err
	}

	var resMap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&resMap); err != nil {
		return "", fmt.Errorf("error parsing the response body: %w", err)
	}

	version, _ := resMap["_version"].(float64)
	return fmt.Sprintf("%s/%s/%d", index, id, int(version)), nil
}

// getDocument decodes the _source of index/id into out.
func (s *Store) getDocument(ctx context.Context, index string, id string, out interface{}) error {
	res, err := esapi.GetRequest{Index: index, DocumentID: url.PathEscape(id)}.Do(ctx, s.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s/%s: %w", index, id, models.ErrObjectNotFound)
	}
	if err := responseError(res); err != nil {
		return err
	}

	var resMap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&resMap); err != nil {
		return fmt.Errorf("error parsing the response body: %w", err)
	}

	source, ok := resMap["_source"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%s/%s has no _source", index, id)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}

func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	res.Body.Close()
	return fmt.Errorf("elasticsearch responded %s: %s", res.Status(), string(body))
}

var _ repositories.Store = (*Store)(nil)
