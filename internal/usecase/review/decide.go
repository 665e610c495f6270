package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type DecideInput struct {
	SubmissionID string
	Action       string
	Actor        string
	Comments     string
}

type DecideResult struct {
	SubmissionID string
	Status       string
	Promotion    PromotionSummary
}

// Decide applies a reviewer verdict. The status flip is a compare-and-swap
// on pending_review and, for approvals, shares one transaction with the
// promotion writes: either the submission becomes approved with all
// production rows in place, or nothing changes. Two racing approvals
// cannot both promote; the loser gets ErrStatusConflict.
func (s *Service) Decide(ctx context.Context, input DecideInput) (DecideResult, error) {
	if ctx == nil {
		return DecideResult{}, errors.New("context is required")
	}
	if strings.TrimSpace(input.SubmissionID) == "" {
		return DecideResult{}, errSubmissionIDRequired
	}

	action, err := domainreview.ParseAction(strings.TrimSpace(input.Action))
	if err != nil {
		return DecideResult{}, err
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review"),
		slog.String("submission_id", input.SubmissionID),
		slog.String("action", action),
		slog.String("actor", firstNonEmpty(strings.TrimSpace(input.Actor), "reviewer")),
	)

	toStatus := domainreview.StatusApproved
	if action == domainreview.ActionReject {
		toStatus = domainreview.StatusRejected
	}

	now := nowUTCString()
	change := ports.StatusChange{
		SubmissionID: input.SubmissionID,
		FromStatus:   string(domainreview.StatusPendingReview),
		ToStatus:     string(toStatus),
		ReviewedAt:   &now,
		UpdatedAt:    now,
	}
	if comments := strings.TrimSpace(input.Comments); comments != "" {
		change.Comments = &comments
	}

	var summary PromotionSummary
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.submissions.GetSubmission(txCtx, input.SubmissionID)
		if err != nil {
			return err
		}

		if action == domainreview.ActionReject {
			return s.submissions.UpdateSubmissionStatus(txCtx, change)
		}

		subType, err := domainreview.ParseSubmissionType(record.Type)
		if err != nil {
			return err
		}
		extraction := domainreview.ExtractionFromSubmissionData(subType, record.Data)
		if extraction.IsEmpty() {
			return ErrNothingToPromote
		}

		if err := s.submissions.UpdateSubmissionStatus(txCtx, change); err != nil {
			return err
		}

		summary, err = s.promote(txCtx, record, extraction)
		if err != nil {
			return errs.Wrap(err, "promote submission")
		}

		return s.mergeSubmissionData(txCtx, input.SubmissionID, map[string]any{
			"promoted_at": now,
			"promotion": map[string]any{
				"vulnerabilities": summary.Vulnerabilities,
				"ofcs":            summary.OFCs,
				"links":           summary.Links,
				"sources":         summary.Sources,
			},
		})
	})
	if err != nil {
		return DecideResult{}, err
	}

	logging.Info(logCtx, "review decision applied",
		slog.String("status", string(toStatus)),
		slog.Int("promoted_vulnerabilities", summary.Vulnerabilities),
		slog.Int("promoted_ofcs", summary.OFCs),
	)

	return DecideResult{
		SubmissionID: input.SubmissionID,
		Status:       string(toStatus),
		Promotion:    summary,
	}, nil
}
