// ABOUTME: Export functionality for collected records.
// ABOUTME: Supports JSON and YAML output of both tables.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/pulse/internal/models"
	"gopkg.in/yaml.v3"
)

// exportLimit caps export reads; high enough for decades of daily rows.
const exportLimit = 100000

// ExportData represents the full export format for collected data.
type ExportData struct {
	Version    string                    `json:"version" yaml:"version"`
	ExportedAt time.Time                 `json:"exported_at" yaml:"exported_at"`
	Tool       string                    `json:"tool" yaml:"tool"`
	Daily      []*models.DailyRecord     `json:"daily_metrics" yaml:"daily_metrics"`
	Body       []*models.BodyComposition `json:"body_composition" yaml:"body_composition"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	daily, err := d.ListDailyRecords(exportLimit)
	if err != nil {
		return nil, fmt.Errorf("list daily records: %w", err)
	}

	body, err := d.ListBodyCompositions(exportLimit)
	if err != nil {
		return nil, fmt.Errorf("list body compositions: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "pulse",
		Daily:      daily,
		Body:       body,
	}, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
