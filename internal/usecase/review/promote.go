package review

import (
	"context"
	"strings"

	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

const (
	linkTypeDirect = "direct"

	// Explicit associations carry full confidence; there is no computed
	// scoring in this design.
	explicitLinkConfidence = 1.0
)

type PromotionSummary struct {
	Vulnerabilities int
	OFCs            int
	Links           int
	Sources         int
}

// promote fans the canonical extraction out into the production tables.
// Runs inside the approve transaction; any failure rolls the whole
// decision back. Vulnerabilities are reused by exact (case-insensitive)
// title match so repeated titles across submissions don't multiply rows.
func (s *Service) promote(ctx context.Context, record ports.SubmissionRecord, extraction domainreview.Extraction) (PromotionSummary, error) {
	summary := PromotionSummary{}
	now := nowUTCString()

	// Titles promoted in this pass, so OFC associations resolve against
	// them without another catalog lookup.
	promotedByTitle := make(map[string]uint64, len(extraction.Vulnerabilities))

	for _, vuln := range extraction.Vulnerabilities {
		id, created, err := s.resolveVulnerability(ctx, vuln, record, now)
		if err != nil {
			return PromotionSummary{}, err
		}
		promotedByTitle[titleKey(vuln.Title)] = id
		if created {
			summary.Vulnerabilities++
		}
	}

	ofcIDs := make([]uint64, 0, len(extraction.OptionsForConsideration))
	for _, ofc := range extraction.OptionsForConsideration {
		var vulnID *uint64

		if assoc := strings.TrimSpace(ofc.AssociatedVulnerability); assoc != "" {
			if id, ok := promotedByTitle[titleKey(assoc)]; ok {
				vulnID = &id
			} else {
				id, created, err := s.resolveVulnerability(ctx, domainreview.Vulnerability{
					Title:      assoc,
					Discipline: ofc.Discipline,
				}, record, now)
				if err != nil {
					return PromotionSummary{}, err
				}
				promotedByTitle[titleKey(assoc)] = id
				if created {
					summary.Vulnerabilities++
				}
				vulnID = &id
			}
		}

		created, err := s.catalog.CreateOFC(ctx, ports.OFCRecord{
			OptionText:      ofc.OptionText,
			Discipline:      firstNonEmpty(ofc.Discipline, blobString(record.Data, "discipline")),
			VulnerabilityID: vulnID,
			Source:          record.SubmissionID,
			CreatedAt:       now,
		})
		if err != nil {
			return PromotionSummary{}, err
		}
		summary.OFCs++
		ofcIDs = append(ofcIDs, created.OFCID)

		if vulnID != nil {
			if err := s.catalog.CreateVulnerabilityOFCLink(ctx, ports.VulnerabilityOFCLinkRecord{
				VulnerabilityID: *vulnID,
				OFCID:           created.OFCID,
				LinkType:        linkTypeDirect,
				ConfidenceScore: explicitLinkConfidence,
				CreatedAt:       now,
			}); err != nil {
				return PromotionSummary{}, err
			}
			summary.Links++
		}
	}

	for _, source := range extraction.Sources {
		created, err := s.catalog.CreateSource(ctx, ports.SourceRecord{
			SourceText:      source.SourceText,
			URL:             source.URL,
			Organization:    source.Organization,
			ReferenceNumber: source.ReferenceNumber,
			CreatedAt:       now,
		})
		if err != nil {
			return PromotionSummary{}, err
		}
		summary.Sources++

		for _, ofcID := range ofcIDs {
			if err := s.catalog.LinkSourceToOFC(ctx, created.SourceID, ofcID, now); err != nil {
				return PromotionSummary{}, err
			}
		}
	}

	return summary, nil
}

// resolveVulnerability reuses an existing row on exact title match,
// otherwise creates one. created reports whether a new row was written.
func (s *Service) resolveVulnerability(ctx context.Context, vuln domainreview.Vulnerability, record ports.SubmissionRecord, now string) (uint64, bool, error) {
	existing, found, err := s.catalog.FindVulnerabilityByTitle(ctx, vuln.Title)
	if err != nil {
		return 0, false, errs.Wrap(err, "lookup vulnerability by title")
	}
	if found {
		return existing.VulnerabilityID, false, nil
	}

	var severity *string
	if trimmed := strings.TrimSpace(vuln.Severity); trimmed != "" {
		severity = &trimmed
	}

	created, err := s.catalog.CreateVulnerability(ctx, ports.VulnerabilityRecord{
		Vulnerability: strings.TrimSpace(vuln.Title),
		Discipline:    firstNonEmpty(vuln.Discipline, blobString(record.Data, "discipline")),
		Severity:      severity,
		Source:        record.SubmissionID,
		CreatedAt:     now,
	})
	if err != nil {
		return 0, false, err
	}
	return created.VulnerabilityID, true, nil
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
