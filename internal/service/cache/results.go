package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"PharmaWatch/internal/domain/models"
)

// ResultStore is the facade's view of the latest completed runs: one bundle
// per product plus the cross-product comparison, each replaced wholesale on a
// successful run and read-only in between.
type ResultStore struct {
	c   BytesCache
	ttl time.Duration
}

func NewResultStore(c BytesCache, ttl time.Duration) *ResultStore {
	return &ResultStore{c: c, ttl: ttl}
}

func bundleKey(product string) string    { return "bundle:" + product }
func reactionsKey(product string) string { return "reactions:" + product }
func trialsKey(product string) string    { return "trials:" + product }

const comparisonKey = "comparison"

func (s *ResultStore) PutBundle(b *models.MonitorBundle) error {
	return s.put(bundleKey(b.Product), b)
}

func (s *ResultStore) GetBundle(product string) (*models.MonitorBundle, bool, error) {
	var b models.MonitorBundle
	ok, err := s.get(bundleKey(product), &b)
	if !ok || err != nil {
		return nil, false, err
	}
	return &b, true, nil
}

func (s *ResultStore) PutComparison(rows []models.ComparisonRow) error {
	return s.put(comparisonKey, rows)
}

func (s *ResultStore) GetComparison() ([]models.ComparisonRow, bool, error) {
	var rows []models.ComparisonRow
	ok, err := s.get(comparisonKey, &rows)
	if !ok || err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func (s *ResultStore) PutReactions(product string, rs []models.ReactionCount) error {
	return s.put(reactionsKey(product), rs)
}

func (s *ResultStore) GetReactions(product string) ([]models.ReactionCount, bool, error) {
	var rs []models.ReactionCount
	ok, err := s.get(reactionsKey(product), &rs)
	if !ok || err != nil {
		return nil, false, err
	}
	return rs, true, nil
}

func (s *ResultStore) PutTrials(product string, ts []models.ClinicalTrial) error {
	return s.put(trialsKey(product), ts)
}

func (s *ResultStore) GetTrials(product string) ([]models.ClinicalTrial, bool, error) {
	var ts []models.ClinicalTrial
	ok, err := s.get(trialsKey(product), &ts)
	if !ok || err != nil {
		return nil, false, err
	}
	return ts, true, nil
}

func (s *ResultStore) put(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.c.SetBytes(key, b, s.ttl)
}

func (s *ResultStore) get(key string, dest interface{}) (bool, error) {
	b, ok, err := s.c.GetBytes(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}
