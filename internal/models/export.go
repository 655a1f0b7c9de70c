package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// TrailExport is the downloadable form of a trail.
type TrailExport struct {
	Topic     string            `json:"topic" yaml:"topic"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Trail     []TrailExportNode `json:"trail" yaml:"trail"`
}

// TrailExportNode keeps only the human-readable parts of a node.
type TrailExportNode struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Level       int    `json:"level" yaml:"level"`
}

// ErrUnsupportedFormat indicates an export format other than json or yaml.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportFormat selects the encoding of a trail export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// NewTrailExport builds an export of t stamped at now.
func NewTrailExport(t *CuriosityTrail, now time.Time) TrailExport {
	nodes := make([]TrailExportNode, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		nodes = append(nodes, TrailExportNode{Title: n.Title, Description: n.Description, Level: n.Level})
	}
	return TrailExport{Topic: t.Topic, Timestamp: now, Trail: nodes}
}

// Encode renders the export in the given format.
func (e TrailExport) Encode(format ExportFormat) ([]byte, error) {
	switch format {
	case ExportJSON, "":
		return json.MarshalIndent(e, "", "  ")
	case ExportYAML:
		return yaml.Marshal(e)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFileName returns "<Topic_Name>_curiosity_trail.<ext>".
func ExportFileName(topic string, format ExportFormat) string {
	if format == "" {
		format = ExportJSON
	}
	return whitespaceRun.ReplaceAllString(topic, "_") + "_curiosity_trail." + string(format)
}
