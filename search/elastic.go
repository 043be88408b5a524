package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"embroidery-backend/model"
)

const productIndex = "products"

// Index mirrors the product catalog into Elasticsearch for name/desc/tag
// search. A nil *Index (no ES configured) disables indexing and makes the
// caller fall back to database search.
type Index struct {
	es *elasticsearch.Client
}

func New(url string) *Index {
	if url == "" {
		return nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		log.Printf("Elasticsearch unavailable at %s, search fallback to DB: %v", url, err)
		return nil
	}

	return &Index{es: client}
}

func (i *Index) Enabled() bool {
	return i != nil && i.es != nil
}

type productDoc struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Price    float64  `json:"price"`
}

func (i *Index) IndexProduct(ctx context.Context, p *model.Product) error {
	if !i.Enabled() {
		return nil
	}

	doc, err := json.Marshal(productDoc{
		ID:       p.ID,
		Name:     p.Name,
		Desc:     p.Desc,
		Category: p.Category,
		Tags:     p.Tags,
		Price:    p.Price,
	})
	if err != nil {
		return err
	}

	res, err := i.es.Index(
		productIndex,
		bytes.NewReader(doc),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id uint) error {
	if !i.Enabled() {
		return nil
	}

	res, err := i.es.Delete(
		productIndex,
		strconv.FormatUint(uint64(id), 10),
		i.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// 404 just means the product was never indexed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete product %d: %s", id, res.Status())
	}
	return nil
}

// SearchProducts returns the ids of matching products, best match first.
// The caller re-reads the rows from the database so responses always show
// store-of-record data.
func (i *Index) SearchProducts(ctx context.Context, query string) ([]uint, error) {
	if !i.Enabled() {
		return nil, nil
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name", "desc", "tags"},
			},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(productIndex),
		i.es.Search.WithBody(bytes.NewReader(raw)),
		i.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
