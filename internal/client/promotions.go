package client

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// promotionFile accepts either a bare YAML list or a "promotions:" key.
type promotionFile struct {
	Promotions []Promotion `yaml:"promotions"`
}

// ReadPromotions parses a YAML promotion list.
func ReadPromotions(r io.Reader) ([]Promotion, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list []Promotion
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var f promotionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse promotions: %w", err)
	}
	return f.Promotions, nil
}

// LoadPromotions reads a YAML promotion list from path.
func LoadPromotions(path string) ([]Promotion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPromotions(f)
}
