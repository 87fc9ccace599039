// Package services holds domain services that operate on documents without
// owning them: integrity checks and property panel generation.
package services

import (
	"fmt"
	"strings"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

// IntegrityReport lists the problems found in a forest.
type IntegrityReport struct {
	DuplicateIDs   []string `json:"duplicateIds,omitempty"`
	UnknownTypes   []string `json:"unknownTypes,omitempty"`
	Misplaced      []string `json:"misplaced,omitempty"`
	MissingProps   []string `json:"missingProps,omitempty"`
	ExtraProps     []string `json:"extraProps,omitempty"`
	MediaRefs      []string `json:"mediaRefs,omitempty"`
	SectionCount   int      `json:"sectionCount"`
	WidgetCount    int      `json:"widgetCount"`
	RepairRequired bool     `json:"repairRequired"`
}

// DocumentIntegrityService checks stored or generated forests against the
// catalog and repairs them.
type DocumentIntegrityService struct {
	catalog *widgets.Catalog
}

func NewDocumentIntegrityService(catalog *widgets.Catalog) *DocumentIntegrityService {
	if catalog == nil {
		catalog = widgets.Default()
	}
	return &DocumentIntegrityService{catalog: catalog}
}

// Analyze inspects a forest without changing it. mediaPrefix selects which
// image sources count as media references; empty disables the scan.
func (s *DocumentIntegrityService) Analyze(sections []*document.Node, mediaPrefix string) *IntegrityReport {
	report := &IntegrityReport{}
	seen := make(map[string]bool)

	var visit func(n *document.Node, parentType string)
	visit = func(n *document.Node, parentType string) {
		if seen[n.ID] || n.ID == "" {
			report.DuplicateIDs = append(report.DuplicateIDs, n.ID)
		}
		seen[n.ID] = true

		def, ok := s.catalog.Get(n.Type)
		switch {
		case !ok:
			report.UnknownTypes = append(report.UnknownTypes, fmt.Sprintf("%s:%s", n.ID, n.Type))
		case !s.catalog.CanContain(parentType, n.Type):
			report.Misplaced = append(report.Misplaced, n.ID)
		default:
			for _, f := range def.Fields {
				if !n.Has(f.Key) {
					report.MissingProps = append(report.MissingProps, n.ID+"."+f.Key)
				}
			}
			for key := range n.Props {
				if _, known := def.Field(key); !known {
					report.ExtraProps = append(report.ExtraProps, n.ID+"."+key)
				}
			}
			if def.Structural() {
				if n.Type == widgets.TypeSection {
					report.SectionCount++
				}
			} else {
				report.WidgetCount++
			}
		}

		if mediaPrefix != "" {
			s.scanForMedia(n, mediaPrefix, &report.MediaRefs)
		}
		for _, child := range n.Children {
			visit(child, n.Type)
		}
	}
	for _, section := range sections {
		visit(section, widgets.ParentRoot)
	}

	report.RepairRequired = len(report.DuplicateIDs)+len(report.UnknownTypes)+len(report.Misplaced)+
		len(report.MissingProps)+len(report.ExtraProps) > 0
	return report
}

// Repair returns a cleaned deep copy of the forest. See document.Conform.
func (s *DocumentIntegrityService) Repair(sections []*document.Node, newID document.IDGenerator) []*document.Node {
	return document.Conform(s.catalog, sections, newID)
}

// MediaReferences returns image sources under mediaPrefix across a forest.
func (s *DocumentIntegrityService) MediaReferences(sections []*document.Node, mediaPrefix string) []string {
	var refs []string
	document.WalkForest(sections, func(n, _ *document.Node) bool {
		s.scanForMedia(n, mediaPrefix, &refs)
		return true
	})
	return refs
}

// CalculateOrphans returns stored media files that no document references.
func (s *DocumentIntegrityService) CalculateOrphans(files []string, references []string) []string {
	used := make(map[string]bool, len(references))
	for _, ref := range references {
		used[ref] = true
	}
	var orphans []string
	for _, f := range files {
		if !used[f] {
			orphans = append(orphans, f)
		}
	}
	return orphans
}

func (s *DocumentIntegrityService) scanForMedia(n *document.Node, prefix string, refs *[]string) {
	for _, key := range []string{"src", "image"} {
		v := n.String(key)
		if v == "" || !strings.HasPrefix(v, prefix) {
			continue
		}
		*refs = append(*refs, strings.TrimPrefix(strings.TrimPrefix(v, prefix), "/"))
	}
}
